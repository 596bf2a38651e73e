package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/repository"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// Statuses set by MIS staff.
const (
	TicketStatusInProgress = "In Progress"
	TicketStatusDone       = "Done"
)

// AssignmentService lets MIS staff take and close tickets.
type AssignmentService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     observability.OrNop(deps.Logger),
	}
}

// AssignTicket names the staff member working on a ticket. Without a name
// in req the caller takes it. A To Do ticket moves to In Progress.
func (s *AssignmentService) AssignTicket(ctx context.Context, staff *auth.Principal, ticketID string, req dto.AssignTicketRequest) (*repository.StoredTicket, error) {
	ticket, err := s.staffTicket(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}

	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" && last == "" {
		first, last = staff.Account.FirstName, staff.Account.LastName
	}
	ticket.StaffFirstName, ticket.StaffLastName = first, last
	if ticket.Status == "" || ticket.Status == domain.TicketStatusToDo {
		ticket.Status = TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishAssignmentEvent(ctx, staff.UserID, ticket)
	return ticket, nil
}

// ResolveTicket marks a ticket Done, finished on today's date. An
// unassigned ticket is assigned to the caller.
func (s *AssignmentService) ResolveTicket(ctx context.Context, staff *auth.Principal, ticketID string) (*repository.StoredTicket, error) {
	ticket, err := s.staffTicket(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	y, m, d := now.Date()
	finished := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	ticket.DateFinished = &finished
	ticket.Status = TicketStatusDone
	if ticket.StaffFirstName == "" && ticket.StaffLastName == "" {
		ticket.StaffFirstName, ticket.StaffLastName = staff.Account.FirstName, staff.Account.LastName
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishAssignmentEvent(ctx, staff.UserID, ticket)
	return ticket, nil
}

func (s *AssignmentService) staffTicket(ctx context.Context, staff *auth.Principal, ticketID string) (*repository.StoredTicket, error) {
	if staff == nil || staff.Account == nil || !staff.Account.Staff {
		return nil, apperrors.NewStatusError(http.StatusForbidden, apperrors.CodeForbidden, "MIS staff only")
	}
	id, err := strconv.ParseInt(ticketID, 10, 64)
	if err != nil {
		return nil, ticketNotFound(ticketID)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(ticketID)
		}
		return nil, err
	}
	return ticket, nil
}

func ticketNotFound(ticketID string) error {
	return apperrors.NewStatusError(http.StatusNotFound, apperrors.CodeNotFound, "ticket "+ticketID+" not found")
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, actorID string, ticket *repository.StoredTicket) {
	s.logger.Info("ticket updated by staff",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("staff", actorID),
		zap.String("status", ticket.Status))
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		Phase:     ticket.Status,
		Timestamp: s.clock.Now(),
		Payload: events.TicketAssigned{
			TicketID:  ticket.ID,
			StaffName: strings.TrimSpace(ticket.StaffFirstName + " " + ticket.StaffLastName),
			Status:    ticket.Status,
		},
	})
}

package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/repository"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// TicketService files and lists tickets.
type TicketService struct {
	tickets repository.TicketRepository
	logger  *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, logger *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, logger: observability.OrNop(logger)}
}

// CreateTicket files req on behalf of principal. A reporter reference in the
// body must name the caller; a body with neither reference is filed under
// the caller.
func (s *TicketService) CreateTicket(ctx context.Context, principal *auth.Principal, req dto.CreateTicketRequest) (*repository.StoredTicket, error) {
	issue := strings.TrimSpace(req.Issue)
	if issue == "" {
		return nil, apperrors.NewValidationError("issue required", nil)
	}
	created, err := time.Parse(domain.DateLayout, req.DateCreated)
	if err != nil {
		return nil, apperrors.NewValidationError("dateCreated must be YYYY-MM-DD", map[string]any{"dateCreated": req.DateCreated})
	}
	if req.Student != nil && req.Employee != nil {
		return nil, apperrors.NewValidationError("only one of student and employee may be set", nil)
	}

	kind := principal.Kind
	switch {
	case req.Student != nil:
		if req.Student.StudentNumber != principal.UserID {
			return nil, forbiddenReporter()
		}
		kind = domain.UserKindStudent
	case req.Employee != nil:
		if req.Employee.EmployeeNumber != principal.UserID {
			return nil, forbiddenReporter()
		}
		kind = domain.UserKindEmployee
	}

	status := req.Status
	if status == "" {
		status = domain.TicketStatusToDo
	}
	ticket := &repository.StoredTicket{
		ReporterID:   principal.UserID,
		ReporterKind: kind,
		Issue:        req.Issue,
		Status:       status,
		DateCreated:  created,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket filed", zap.Int64("ticket_id", ticket.ID), zap.String("reporter", ticket.ReporterID))
	return ticket, nil
}

// ListTickets returns userID's tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, userID string) ([]repository.StoredTicket, error) {
	return s.tickets.ListByReporter(ctx, userID)
}

func forbiddenReporter() error {
	return apperrors.NewStatusError(http.StatusForbidden, apperrors.CodeForbidden, "reporter does not match the signed-in user")
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/repository"
	"github.com/spec-kit/ticket-client/internal/service"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /TicketService/ticket/add.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticketResponse(ticket))
}

// ListTickets GET /TicketService/tickets/user/:userId. A user with no
// tickets gets 204 with no body.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return c.SendStatus(http.StatusNoContent)
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

func ticketResponse(ticket *repository.StoredTicket) dto.TicketResponse {
	rec := ticket.Record()
	resp := dto.TicketResponse{
		TicketID:     rec.TicketID,
		Issue:        rec.Issue,
		Status:       rec.Status,
		DateCreated:  rec.DateCreated,
		DateFinished: rec.DateFinished,
		MisStaff:     rec.AssignedStaff,
	}
	switch ticket.ReporterKind {
	case domain.UserKindStudent:
		resp.Student = &dto.StudentRef{StudentNumber: ticket.ReporterID}
	case domain.UserKindEmployee:
		resp.Employee = &dto.EmployeeRef{EmployeeNumber: ticket.ReporterID}
	}
	return resp
}

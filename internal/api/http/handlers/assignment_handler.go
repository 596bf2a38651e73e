package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/service"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// AssignmentHandler serves the MIS staff endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: assignmentService}
}

// AssignTicket POST /TicketService/ticket/:ticketId/assign.
func (h *AssignmentHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.AssignTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), principal, c.Params("ticketId"), req)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// ResolveTicket POST /TicketService/ticket/:ticketId/resolve.
func (h *AssignmentHandler) ResolveTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("user required")
	}
	ticket, err := h.service.ResolveTicket(c.UserContext(), principal, c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

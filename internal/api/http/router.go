package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-client/internal/api/http/handlers"
	"github.com/spec-kit/ticket-client/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentHandler
	AuthMiddleware *auth.AuthMiddleware
}

// NewApp returns a fiber app configured for the ticket service routes.
// Path parameters are unescaped so user ids match the client's encoding.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/user")
	users.Post("/login", cfg.Users.Login)
	users.Post("/forgot-password", cfg.Users.ForgotPassword)
	users.Post("/verify-forgot-password", cfg.Users.VerifyForgotPassword)

	tickets := app.Group("/TicketService", cfg.AuthMiddleware.Handle)
	tickets.Post("/ticket/add", cfg.Tickets.CreateTicket)
	tickets.Get("/tickets/user/:userId", auth.RequireSelf("userId"), cfg.Tickets.ListTickets)
	tickets.Post("/ticket/:ticketId/assign", cfg.Assignments.AssignTicket)
	tickets.Post("/ticket/:ticketId/resolve", cfg.Assignments.ResolveTicket)
}

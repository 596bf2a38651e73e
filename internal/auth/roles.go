package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// RequireSelf ensures the route parameter param names the authenticated
// user, so a token only reads its own tickets.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return unauthorized(http.StatusText(http.StatusUnauthorized))
		}
		if c.Params(param) != principal.UserID {
			return apperrors.NewStatusError(http.StatusForbidden, apperrors.CodeForbidden, "tickets belong to another user")
		}
		return c.Next()
	}
}

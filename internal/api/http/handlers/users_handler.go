package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/service"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// UsersHandler exposes login and password recovery.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{
		Token:    res.Token,
		UserID:   res.Account.ID,
		UserType: string(res.Account.Kind),
		UserName: res.Account.DisplayName(),
	})
}

// ForgotPassword handles POST /user/forgot-password.
func (h *UsersHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("username and email required", nil)
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Username, req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "OTP sent"})
}

// VerifyForgotPassword handles POST /user/verify-forgot-password.
func (h *UsersHandler) VerifyForgotPassword(c *fiber.Ctx) error {
	var req dto.VerifyForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.OTP == "" || req.Password == "" {
		return apperrors.NewValidationError("username, otp and password required", nil)
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Username, req.OTP, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

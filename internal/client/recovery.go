package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/validation"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// RecoveryClient performs the unauthenticated forgot-password exchanges.
// Only HTTP 200 counts as success for either step.
type RecoveryClient struct {
	base
}

// NewRecoveryClient builds a client for the service at baseURL.
func NewRecoveryClient(baseURL string, opts ...Option) *RecoveryClient {
	return &RecoveryClient{base: newBase(baseURL, opts)}
}

// RequestOtp asks the service to email an OTP bound to req.Username.
func (c *RecoveryClient) RequestOtp(ctx context.Context, req domain.RecoveryRequest) error {
	if err := validation.CheckRecoveryRequest(req); err != nil {
		return c.outcome(OpRequestOtp, err)
	}
	payload := dto.ForgotPasswordRequest{Username: req.Username, Email: req.Email}
	return c.post(ctx, OpRequestOtp, PathForgotPassword, payload)
}

// ConfirmOtp redeems the OTP and sets the new password.
func (c *RecoveryClient) ConfirmOtp(ctx context.Context, conf domain.RecoveryConfirmation) error {
	if err := validation.CheckRecoveryConfirmation(conf); err != nil {
		return c.outcome(OpConfirmOtp, err)
	}
	payload := dto.VerifyForgotPasswordRequest{Username: conf.Username, OTP: conf.OTP, Password: conf.NewPassword}
	return c.post(ctx, OpConfirmOtp, PathVerifyForgot, payload)
}

func (c *RecoveryClient) post(ctx context.Context, op, path string, payload any) error {
	resp, err := c.send(ctx, op, http.MethodPost, path, "", payload)
	if err != nil {
		return c.outcome(op, fmt.Errorf("%s: %w", op, err))
	}
	if resp.status != http.StatusOK {
		c.logRejected(op, resp)
		return c.outcome(op, apperrors.NewRejected(resp.status, string(resp.body)))
	}
	return c.outcome(op, nil)
}

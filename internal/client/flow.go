package client

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-client/internal/domain"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// Recoverer is the two-step recovery exchange.
type Recoverer interface {
	RequestOtp(ctx context.Context, req domain.RecoveryRequest) error
	ConfirmOtp(ctx context.Context, conf domain.RecoveryConfirmation) error
}

// RecoveryFlow tracks one password recovery through
// IDLE -> OTP_REQUESTED -> (PASSWORD_RESET | FAILED). The service binds the
// OTP to the username; the flow only remembers which username and email the
// OTP was requested for. Local validation errors leave the state unchanged.
type RecoveryFlow struct {
	client Recoverer

	mu        sync.Mutex
	state     domain.RecoveryState
	otpIssued bool
	username  string
	email     string
}

// NewRecoveryFlow starts a flow in IDLE.
func NewRecoveryFlow(client Recoverer) *RecoveryFlow {
	return &RecoveryFlow{client: client, state: domain.RecoveryIdle}
}

// State returns the current protocol state.
func (f *RecoveryFlow) State() domain.RecoveryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Context returns the username and email the OTP was issued for.
func (f *RecoveryFlow) Context() (username, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username, f.email
}

// CanConfirm reports whether the verification step is reachable.
func (f *RecoveryFlow) CanConfirm() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canConfirmLocked()
}

func (f *RecoveryFlow) canConfirmLocked() bool {
	return f.otpIssued && (f.state == domain.RecoveryOtpRequested || f.state == domain.RecoveryFailed)
}

// RequestOtp performs the first step. It may be repeated until the password
// has been reset.
func (f *RecoveryFlow) RequestOtp(ctx context.Context, req domain.RecoveryRequest) error {
	f.mu.Lock()
	if f.state == domain.RecoveryPasswordReset {
		f.mu.Unlock()
		return apperrors.NewFlowState("password already reset")
	}
	f.mu.Unlock()

	err := f.client.RequestOtp(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err == nil:
		f.state = domain.RecoveryOtpRequested
		f.otpIssued = true
		f.username, f.email = req.Username, req.Email
	case apperrors.Is(err, apperrors.CodeValidation):
	default:
		f.state = domain.RecoveryFailed
		f.otpIssued = false
	}
	return err
}

// ConfirmOtp performs the second step for the username the OTP was issued
// to. A failure leaves the flow in FAILED, from which ConfirmOtp may be
// retried without limit.
func (f *RecoveryFlow) ConfirmOtp(ctx context.Context, otp, newPassword string) error {
	f.mu.Lock()
	if !f.canConfirmLocked() {
		state := f.state
		f.mu.Unlock()
		return apperrors.NewFlowState("no OTP has been requested (state " + string(state) + ")")
	}
	conf := domain.RecoveryConfirmation{Username: f.username, OTP: otp, NewPassword: newPassword}
	f.mu.Unlock()

	err := f.client.ConfirmOtp(ctx, conf)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err == nil:
		f.state = domain.RecoveryPasswordReset
	case apperrors.Is(err, apperrors.CodeValidation):
	default:
		f.state = domain.RecoveryFailed
	}
	return err
}

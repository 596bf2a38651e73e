package screen

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/validation"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// ErrNoOtpRequested is returned when the verification screen is opened for
// a flow that has not issued an OTP.
var ErrNoOtpRequested = errors.New("screen: no OTP has been requested")

// OtpContext is carried from the forgot-password screen to the
// verification screen.
type OtpContext struct {
	Username string
	Email    string
	Flow     *client.RecoveryFlow
}

// ForgotState is the snapshot published by the forgot-password screen.
type ForgotState struct {
	Status
	Username      string
	Email         string
	SubmitEnabled bool
	// Next is set once an OTP has been issued.
	Next *OtpContext
}

// ForgotPasswordScreen performs the first recovery step.
type ForgotPasswordScreen struct {
	machine
	flow *client.RecoveryFlow

	req    domain.RecoveryRequest
	status Status
	next   *OtpContext
}

// NewForgotPasswordScreen builds the screen around a fresh or reused flow.
func NewForgotPasswordScreen(deps Deps, flow *client.RecoveryFlow) *ForgotPasswordScreen {
	s := &ForgotPasswordScreen{flow: flow}
	s.init(events.ScreenForgotPassword, deps)
	s.store(PhaseIdle, s.snapshot())
	return s
}

func (s *ForgotPasswordScreen) SetUsername(v string) {
	s.loop.Do(func() {
		s.req.Username = v
		s.emit()
	})
}

func (s *ForgotPasswordScreen) SetEmail(v string) {
	s.loop.Do(func() {
		s.req.Email = v
		s.emit()
	})
}

// SendOtp requests an OTP for the entered username and email. It reports
// whether a request was issued.
func (s *ForgotPasswordScreen) SendOtp() bool {
	issued := false
	s.loop.Do(func() {
		if s.closed || s.status.Phase == PhaseLoading {
			return
		}
		if err := validation.CheckRecoveryRequest(s.req); err != nil {
			s.fail(err)
			return
		}
		seq := s.begin()
		s.status = Status{Phase: PhaseLoading, Seq: seq}
		s.next = nil
		s.emit()
		issued = true

		req := s.req
		launch(&s.machine, seq, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.flow.RequestOtp(ctx, req)
		}, func(_ struct{}, err error) {
			if err != nil {
				s.fail(err)
				return
			}
			username, email := s.flow.Context()
			s.next = &OtpContext{Username: username, Email: email, Flow: s.flow}
			s.status = Status{Phase: PhaseSuccess, Message: MsgOtpSent, Seq: s.seq}
			s.emit()
		})
	})
	return issued
}

func (s *ForgotPasswordScreen) fail(err error) {
	code := apperrors.CodeOf(err)
	if code != apperrors.CodeValidation {
		s.logger.Warn("otp request failed", zap.String("code", code), zap.Error(err))
	}
	s.status = Status{Phase: PhaseError, Message: recoveryMessage(err, MsgOtpSendFailed), ErrCode: code, Seq: s.seq}
	s.emit()
}

func (s *ForgotPasswordScreen) snapshot() ForgotState {
	return ForgotState{
		Status:        s.status,
		Username:      s.req.Username,
		Email:         s.req.Email,
		SubmitEnabled: !s.closed && s.status.Phase != PhaseLoading,
		Next:          s.next,
	}
}

func (s *ForgotPasswordScreen) emit() {
	s.store(s.status.Phase, s.snapshot())
}

// State returns the latest snapshot.
func (s *ForgotPasswordScreen) State() ForgotState {
	st, _ := s.latest().(ForgotState)
	return st
}

func (s *ForgotPasswordScreen) Close() {
	s.shutdown()
}

// VerifyState is the snapshot published by the OTP verification screen.
type VerifyState struct {
	Status
	// Username is shown read-only.
	Username string
	OTP      string
	// PasswordSet reports whether a new password was entered; the password
	// itself is never published.
	PasswordSet   bool
	SubmitEnabled bool
	// Done is set once the password was reset; the caller routes back to
	// login.
	Done bool
}

// VerifyOtpScreen performs the second recovery step.
type VerifyOtpScreen struct {
	machine
	next OtpContext

	otp         string
	newPassword string
	status      Status
	done        bool
}

// NewVerifyOtpScreen builds the screen for an issued OTP. It fails with
// ErrNoOtpRequested unless the flow can confirm.
func NewVerifyOtpScreen(deps Deps, next OtpContext) (*VerifyOtpScreen, error) {
	if next.Flow == nil || !next.Flow.CanConfirm() {
		return nil, ErrNoOtpRequested
	}
	s := &VerifyOtpScreen{next: next}
	s.init(events.ScreenVerifyOtp, deps)
	s.store(PhaseIdle, s.snapshot())
	return s, nil
}

func (s *VerifyOtpScreen) SetOtp(v string) {
	s.loop.Do(func() {
		s.otp = v
		s.emit()
	})
}

func (s *VerifyOtpScreen) SetNewPassword(v string) {
	s.loop.Do(func() {
		s.newPassword = v
		s.emit()
	})
}

// Verify redeems the OTP. A failure leaves the screen interactive so the
// user can correct the input and retry. It reports whether a request was
// issued.
func (s *VerifyOtpScreen) Verify() bool {
	issued := false
	s.loop.Do(func() {
		if s.closed || s.done || s.status.Phase == PhaseLoading {
			return
		}
		conf := domain.RecoveryConfirmation{Username: s.next.Username, OTP: s.otp, NewPassword: s.newPassword}
		if err := validation.CheckRecoveryConfirmation(conf); err != nil {
			s.fail(err)
			return
		}
		seq := s.begin()
		s.status = Status{Phase: PhaseLoading, Seq: seq}
		s.emit()
		issued = true

		launch(&s.machine, seq, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.next.Flow.ConfirmOtp(ctx, conf.OTP, conf.NewPassword)
		}, func(_ struct{}, err error) {
			if err != nil {
				s.fail(err)
				return
			}
			s.done = true
			s.status = Status{Phase: PhaseSuccess, Message: MsgResetSucceeded, Seq: s.seq}
			s.emit()
			s.publish(events.EventPasswordReset, PhaseSuccess, s.next.Username)
		})
	})
	return issued
}

func (s *VerifyOtpScreen) fail(err error) {
	code := apperrors.CodeOf(err)
	if code != apperrors.CodeValidation {
		s.logger.Warn("password reset failed", zap.String("code", code), zap.Error(err))
	}
	s.status = Status{Phase: PhaseError, Message: recoveryMessage(err, MsgResetFailed), ErrCode: code, Seq: s.seq}
	s.emit()
}

func (s *VerifyOtpScreen) snapshot() VerifyState {
	return VerifyState{
		Status:        s.status,
		Username:      s.next.Username,
		OTP:           s.otp,
		PasswordSet:   s.newPassword != "",
		SubmitEnabled: !s.closed && !s.done && s.status.Phase != PhaseLoading,
		Done:          s.done,
	}
}

func (s *VerifyOtpScreen) emit() {
	s.store(s.status.Phase, s.snapshot())
}

// State returns the latest snapshot.
func (s *VerifyOtpScreen) State() VerifyState {
	st, _ := s.latest().(VerifyState)
	return st
}

func (s *VerifyOtpScreen) Close() {
	s.shutdown()
}

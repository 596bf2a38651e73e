package validation

import (
	"strings"

	"github.com/spec-kit/ticket-client/internal/domain"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// Reason explains why a draft cannot be submitted.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonEmptyIssue Reason = "EMPTY_ISSUE"
)

// User facing validation messages.
const (
	MsgEmptyIssue      = "Description must contain an issue."
	MsgRecoveryRequest = "Please enter both your username and email"
	MsgRecoveryConfirm = "Please enter OTP and a new password"
)

// Result is the outcome of CanSubmit.
type Result struct {
	OK     bool
	Reason Reason
}

// Message returns the inline message for a failed result.
func (r Result) Message() string {
	if r.Reason == ReasonEmptyIssue {
		return MsgEmptyIssue
	}
	return ""
}

// Err converts a failed result into a validation error.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return apperrors.NewValidationError(r.Message(), map[string]any{"reason": string(r.Reason)})
}

// CanSubmit reports whether the draft may be sent. It is pure and is
// evaluated on every attempt.
func CanSubmit(draft domain.TicketDraft) Result {
	if strings.TrimSpace(draft.IssueText) == "" {
		return Result{OK: false, Reason: ReasonEmptyIssue}
	}
	return Result{OK: true}
}

// CheckRecoveryRequest requires both username and email.
func CheckRecoveryRequest(req domain.RecoveryRequest) error {
	if req.Username == "" || req.Email == "" {
		return apperrors.NewValidationError(MsgRecoveryRequest, nil)
	}
	return nil
}

// CheckRecoveryConfirmation requires both OTP and new password.
func CheckRecoveryConfirmation(conf domain.RecoveryConfirmation) error {
	if conf.OTP == "" || conf.NewPassword == "" {
		return apperrors.NewValidationError(MsgRecoveryConfirm, nil)
	}
	return nil
}

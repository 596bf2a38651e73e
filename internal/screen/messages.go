package screen

import (
	"github.com/spec-kit/ticket-client/internal/client"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// User-facing messages.
const (
	MsgSessionMissing  = client.MsgSessionMissing
	MsgCreateRejected  = "Failed to submit ticket. Please try again."
	MsgCreateNetwork   = "Unable to reach the ticket service. Please check your network connection."
	MsgCreateSucceeded = "Ticket submitted."
	MsgNoTicketsFound  = "No tickets found."
	MsgNoTicketsAvail  = "No tickets available"
	MsgListFailed      = "Failed to fetch tickets. Please check your network connection."
	MsgOtpSendFailed   = "Failed to send OTP."
	MsgOtpSent         = "An OTP has been sent to your email"
	MsgResetFailed     = "Failed to reset password."
	MsgResetSucceeded  = "Password reset successful. You can now log in."
	MsgInternalFailure = "Something went wrong. Please try again."
	MsgRecoveryRestart = "Please request a new OTP."
)

func createMessage(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeUnauthenticated:
		return MsgSessionMissing
	case apperrors.CodeRejected:
		return MsgCreateRejected
	case apperrors.CodeNetwork:
		return MsgCreateNetwork
	default:
		return MsgInternalFailure
	}
}

func listMessage(err error) string {
	if apperrors.Is(err, apperrors.CodeUnauthenticated) {
		return MsgSessionMissing
	}
	return MsgListFailed
}

func recoveryMessage(err error, fallback string) string {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		return apperrors.ToDomainError(err).Message
	case apperrors.CodeFlowState:
		return MsgRecoveryRestart
	}
	return fallback
}

package domain

// RecoveryRequest asks the service to issue an OTP for username.
type RecoveryRequest struct {
	Username string
	Email    string
}

// RecoveryConfirmation redeems an OTP and sets a new password. The service
// consumes it exactly once.
type RecoveryConfirmation struct {
	Username    string
	OTP         string
	NewPassword string
}

// RecoveryState is the position of a password recovery in its protocol.
type RecoveryState string

const (
	RecoveryIdle          RecoveryState = "IDLE"
	RecoveryOtpRequested  RecoveryState = "OTP_REQUESTED"
	RecoveryPasswordReset RecoveryState = "PASSWORD_RESET"
	RecoveryFailed        RecoveryState = "FAILED"
)

package dto

// ForgotPasswordRequest is the body of POST /user/forgot-password.
type ForgotPasswordRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// VerifyForgotPasswordRequest is the body of POST /user/verify-forgot-password.
type VerifyForgotPasswordRequest struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the fields the client persists as its session.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	UserName string `json:"userName"`
}

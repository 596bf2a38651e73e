package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventScreenStateChanged EventType = "screen_state_changed"
	EventResponseDiscarded  EventType = "response_discarded"
	EventTicketCreated      EventType = "ticket_created"
	EventPasswordReset      EventType = "password_reset"

	// EventOtpIssued is published by the development ticket service; its
	// payload is an OtpIssued.
	EventOtpIssued EventType = "otp_issued"

	// EventTicketAssigned is published by the development ticket service
	// when staff assign or resolve a ticket; its payload is a TicketAssigned.
	EventTicketAssigned EventType = "ticket_assigned"
)

// Screen names used as Event.Screen.
const (
	ScreenCreateTicket   = "create_ticket"
	ScreenTicketList     = "ticket_list"
	ScreenForgotPassword = "forgot_password"
	ScreenVerifyOtp      = "verify_otp"
)

// Event is published by a screen on its own event loop.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Screen    string    `json:"screen"`
	Phase     string    `json:"phase"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	// Payload is the screen's state snapshot (for example screen.CreateState).
	Payload interface{} `json:"payload"`
}

// OtpIssued carries an OTP to the notification worker.
type OtpIssued struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	OTP       string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TicketAssigned describes a staff update to a ticket.
type TicketAssigned struct {
	TicketID  int64  `json:"ticketId"`
	StaffName string `json:"staffName"`
	Status    string `json:"status"`
}

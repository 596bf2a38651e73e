package domain

import "strings"

// UserKind distinguishes the two account populations of the ticket service.
type UserKind string

const (
	UserKindStudent  UserKind = "student"
	UserKindEmployee UserKind = "employee"
	UserKindUnknown  UserKind = ""
)

// ParseUserKind maps the persisted userType value to a UserKind. Values other
// than "student" and "employee" map to UserKindUnknown.
func ParseUserKind(raw string) UserKind {
	switch strings.TrimSpace(raw) {
	case string(UserKindStudent):
		return UserKindStudent
	case string(UserKindEmployee):
		return UserKindEmployee
	default:
		return UserKindUnknown
	}
}

// ReporterRole is the read-only label shown on a ticket draft.
func (k UserKind) ReporterRole() string {
	switch k {
	case UserKindStudent:
		return "Student"
	case UserKindEmployee:
		return "Employee"
	default:
		return "Unknown"
	}
}

// Session is the authenticated identity presented to the ticket service.
// It is created by the login flow and only observed by this client.
type Session struct {
	Token    string
	UserID   string
	UserType string
	UserName string
}

// Kind returns the parsed user kind.
func (s Session) Kind() UserKind {
	return ParseUserKind(s.UserType)
}

// Valid reports whether token, user id and user type are all present.
// A partial session is never valid.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != "" && s.UserType != ""
}

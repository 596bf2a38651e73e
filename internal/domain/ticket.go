package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TicketStatusToDo is the status every new ticket is submitted with.
const TicketStatusToDo = "To Do"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// TicketDraft is the ticket being composed on the create screen. CreatedDate,
// Status and ReporterRole are fixed when the draft is opened.
type TicketDraft struct {
	IssueText    string
	CreatedDate  time.Time
	Status       string
	ReporterRole string
	Kind         UserKind
}

// NewTicketDraft opens a draft stamped with the local calendar date of now.
func NewTicketDraft(now time.Time, kind UserKind) TicketDraft {
	y, m, d := now.Date()
	return TicketDraft{
		CreatedDate:  time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		Status:       TicketStatusToDo,
		ReporterRole: kind.ReporterRole(),
		Kind:         kind,
	}
}

// CreatedDateString formats CreatedDate as YYYY-MM-DD.
func (d TicketDraft) CreatedDateString() string {
	return d.CreatedDate.Format(DateLayout)
}

// TicketID accepts either a JSON number or a JSON string.
type TicketID string

func (id *TicketID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TicketID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ticket id: %w", err)
	}
	*id = TicketID(n.String())
	return nil
}

// Date is an optional calendar date. The service may send YYYY-MM-DD,
// RFC3339, a [y,m,d] array, epoch milliseconds, or null. Any other value
// decodes as absent with the original JSON kept in Raw, so one odd record
// never fails a whole list.
type Date struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// NewDate builds a valid Date.
func NewDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// Unparsed reports whether the service sent a value that could not be read.
func (d Date) Unparsed() bool {
	return !d.Valid && d.Raw != ""
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	if parsed, ok := parseDate(data); ok {
		*d = parsed
		return nil
	}
	*d = Date{Raw: string(data)}
	return nil
}

func parseDate(data []byte) (Date, bool) {
	switch data[0] {
	case '[':
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil || len(parts) < 3 {
			return Date{}, false
		}
		return NewDate(time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)), true
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Date{}, false
		}
		if strings.TrimSpace(s) == "" {
			return Date{}, true
		}
		for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return NewDate(t), true
			}
		}
		return Date{}, false
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return Date{}, false
		}
		ms, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return Date{}, false
			}
			ms = int64(f)
		}
		return NewDate(time.UnixMilli(ms).UTC()), true
	}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(DateLayout))
}

// Display formats the date or returns fallback when absent.
func (d Date) Display(fallback string) string {
	if !d.Valid {
		return fallback
	}
	return d.Time.Format(DateLayout)
}

// StaffName identifies the staff member a ticket is assigned to.
type StaffName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TicketRecord is a server-owned ticket as returned by the list endpoint.
type TicketRecord struct {
	TicketID      TicketID   `json:"ticketId"`
	Issue         string     `json:"issue"`
	Status        string     `json:"status"`
	DateCreated   Date       `json:"dateCreated"`
	DateFinished  Date       `json:"dateFinished"`
	AssignedStaff *StaffName `json:"misStaff"`
}

// IssueLabel returns the issue text or "No Issue".
func (r TicketRecord) IssueLabel() string {
	if r.Issue == "" {
		return "No Issue"
	}
	return r.Issue
}

// StatusLabel returns the status or "No Status".
func (r TicketRecord) StatusLabel() string {
	if r.Status == "" {
		return "No Status"
	}
	return r.Status
}

// CreatedLabel returns the creation date or "No Date".
func (r TicketRecord) CreatedLabel() string {
	return r.DateCreated.Display("No Date")
}

// FinishedLabel returns the completion date or "N/A".
func (r TicketRecord) FinishedLabel() string {
	return r.DateFinished.Display("N/A")
}

// AssigneeLabel returns "first last" or "Unassigned".
func (r TicketRecord) AssigneeLabel() string {
	if r.AssignedStaff == nil || (r.AssignedStaff.FirstName == "" && r.AssignedStaff.LastName == "") {
		return "Unassigned"
	}
	return strings.TrimSpace(r.AssignedStaff.FirstName + " " + r.AssignedStaff.LastName)
}

package dto

import "github.com/spec-kit/ticket-client/internal/domain"

// StudentRef identifies a student reporter.
type StudentRef struct {
	StudentNumber string `json:"studentNumber"`
}

// EmployeeRef identifies an employee reporter.
type EmployeeRef struct {
	EmployeeNumber string `json:"employeeNumber"`
}

// CreateTicketRequest is the body of POST /TicketService/ticket/add. Exactly
// one of Student and Employee is set for a known user kind; the other is
// sent as null.
type CreateTicketRequest struct {
	Issue       string       `json:"issue"`
	DateCreated string       `json:"dateCreated"`
	Status      string       `json:"status"`
	Student     *StudentRef  `json:"student"`
	Employee    *EmployeeRef `json:"employee"`
}

// NewCreateTicketRequest builds the request body for draft submitted by a
// user identified by userID. New tickets are always filed as To Do.
func NewCreateTicketRequest(draft domain.TicketDraft, userID string) CreateTicketRequest {
	req := CreateTicketRequest{
		Issue:       draft.IssueText,
		DateCreated: draft.CreatedDateString(),
		Status:      domain.TicketStatusToDo,
	}
	switch draft.Kind {
	case domain.UserKindStudent:
		req.Student = &StudentRef{StudentNumber: userID}
	case domain.UserKindEmployee:
		req.Employee = &EmployeeRef{EmployeeNumber: userID}
	}
	return req
}

// TicketResponse is a ticket as the service serialises it.
type TicketResponse struct {
	TicketID     domain.TicketID   `json:"ticketId"`
	Issue        string            `json:"issue"`
	Status       string            `json:"status"`
	DateCreated  domain.Date       `json:"dateCreated"`
	DateFinished domain.Date       `json:"dateFinished"`
	Student      *StudentRef       `json:"student"`
	Employee     *EmployeeRef      `json:"employee"`
	MisStaff     *domain.StaffName `json:"misStaff"`
}

// Record converts the response into the client's TicketRecord.
func (r TicketResponse) Record() domain.TicketRecord {
	return domain.TicketRecord{
		TicketID:      r.TicketID,
		Issue:         r.Issue,
		Status:        r.Status,
		DateCreated:   r.DateCreated,
		DateFinished:  r.DateFinished,
		AssignedStaff: r.MisStaff,
	}
}

// AssignTicketRequest is the body of POST /TicketService/ticket/:ticketId/assign.
// Both names empty assigns the caller.
type AssignTicketRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/repository"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

var student = &auth.Principal{UserID: "2021-0001", Kind: domain.UserKindStudent}

func TestCreateTicket(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	svc := NewTicketService(repo, nil)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, student, dto.CreateTicketRequest{
		Issue:       "No network in CL3",
		DateCreated: "2024-10-01",
		Status:      domain.TicketStatusToDo,
		Student:     &dto.StudentRef{StudentNumber: "2021-0001"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID == 0 || ticket.ReporterKind != domain.UserKindStudent {
		t.Errorf("ticket = %+v", ticket)
	}

	// Neither reference: filed under the caller.
	ticket, err = svc.CreateTicket(ctx, student, dto.CreateTicketRequest{Issue: "Printer", DateCreated: "2024-10-02"})
	if err != nil {
		t.Fatalf("create without reporter: %v", err)
	}
	if ticket.Status != domain.TicketStatusToDo || ticket.ReporterID != "2021-0001" {
		t.Errorf("ticket = %+v", ticket)
	}

	got, _ := svc.ListTickets(ctx, "2021-0001")
	if len(got) != 2 {
		t.Errorf("listed %d tickets, want 2", len(got))
	}
}

func TestCreateTicketRejects(t *testing.T) {
	svc := NewTicketService(repository.NewMemoryTicketRepository(), nil)
	cases := []struct {
		name   string
		req    dto.CreateTicketRequest
		status int
	}{
		{"blank issue", dto.CreateTicketRequest{Issue: "  ", DateCreated: "2024-10-01"}, http.StatusBadRequest},
		{"bad date", dto.CreateTicketRequest{Issue: "x", DateCreated: "10/01/2024"}, http.StatusBadRequest},
		{"both refs", dto.CreateTicketRequest{Issue: "x", DateCreated: "2024-10-01",
			Student: &dto.StudentRef{StudentNumber: "2021-0001"}, Employee: &dto.EmployeeRef{EmployeeNumber: "E-1"}}, http.StatusBadRequest},
		{"someone else", dto.CreateTicketRequest{Issue: "x", DateCreated: "2024-10-01",
			Student: &dto.StudentRef{StudentNumber: "2021-0002"}}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTicket(context.Background(), student, tc.req)
			if got := apperrors.StatusOf(err); err == nil || got != tc.status {
				t.Errorf("err = %v (status %d), want status %d", err, got, tc.status)
			}
		})
	}
}

func TestAssignmentService(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	fc := clock.Fake(time.Date(2024, 10, 4, 16, 30, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher(nil)
	var published []events.TicketAssigned
	dispatcher.Subscribe(events.EventTicketAssigned, func(_ context.Context, e events.Event) error {
		published = append(published, e.Payload.(events.TicketAssigned))
		return nil
	})
	svc := NewAssignmentService(AssignmentDependencies{TicketRepo: repo, Dispatcher: dispatcher, Clock: fc})
	ctx := context.Background()

	ticket := &repository.StoredTicket{ReporterID: "2021-0001", Issue: "Wi-Fi", Status: domain.TicketStatusToDo}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatal(err)
	}
	id := strconv.FormatInt(ticket.ID, 10)
	staff := &auth.Principal{UserID: "E-9001", Kind: domain.UserKindEmployee, Account: &repository.Account{FirstName: "Ana", LastName: "Cruz", Staff: true}}

	if _, err := svc.AssignTicket(ctx, student, id, dto.AssignTicketRequest{}); apperrors.StatusOf(err) != http.StatusForbidden {
		t.Errorf("non-staff assign: %v", err)
	}
	if _, err := svc.ResolveTicket(ctx, staff, "abc"); apperrors.StatusOf(err) != http.StatusNotFound {
		t.Errorf("bad id: %v", err)
	}

	got, err := svc.AssignTicket(ctx, staff, id, dto.AssignTicketRequest{FirstName: "Ben", LastName: "Lim"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != TicketStatusInProgress || got.StaffFirstName != "Ben" {
		t.Errorf("assigned = %+v", got)
	}

	got, err = svc.ResolveTicket(ctx, staff, id)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Status != TicketStatusDone || got.DateFinished == nil || got.DateFinished.Format(domain.DateLayout) != "2024-10-04" {
		t.Errorf("resolved = %+v", got)
	}
	if got.StaffLastName != "Lim" {
		t.Errorf("resolve replaced assignee: %+v", got)
	}
	if len(published) != 2 || published[1].Status != TicketStatusDone || published[1].StaffName != "Ben Lim" {
		t.Errorf("events = %+v", published)
	}
}

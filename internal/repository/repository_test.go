package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/ticket-client/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(Account{ID: "2021-0001", Username: "jdoe", Kind: domain.UserKindStudent})

	a, err := repo.GetByUsername(ctx, "JDOE")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.ID != "2021-0001" {
		t.Errorf("id = %q", a.ID)
	}
	if a.DisplayName() != "jdoe" {
		t.Errorf("display name = %q", a.DisplayName())
	}

	if err := repo.UpdatePassword(ctx, "2021-0001", "hash"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if a, _ := repo.GetByID(ctx, "2021-0001"); a.PasswordHash != "hash" {
		t.Errorf("hash = %q", a.PasswordHash)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryTicketRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	day := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	for _, issue := range []string{"first", "second"} {
		if err := repo.Create(ctx, &StoredTicket{ReporterID: "2021-0001", Issue: issue, Status: domain.TicketStatusToDo, DateCreated: day}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(ctx, &StoredTicket{ReporterID: "E-77", Issue: "other", DateCreated: day}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ListByReporter(ctx, "2021-0001")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Issue != "second" {
		t.Fatalf("tickets = %+v", got)
	}

	rec := got[0].Record()
	if rec.TicketID != "2" || rec.CreatedLabel() != "2024-10-01" || rec.AssigneeLabel() != "Unassigned" || rec.FinishedLabel() != "N/A" {
		t.Errorf("record = %+v", rec)
	}

	none, err := repo.ListByReporter(ctx, "nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("list for unknown reporter = %v, %v", none, err)
	}
}

func TestMemoryPasswordResetRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPasswordResetRepository()

	if _, err := repo.Get(ctx, "jdoe"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, &PasswordReset{Username: "JDoe", OTPHash: "h1"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, &PasswordReset{Username: "jdoe", OTPHash: "h2"}); err != nil {
		t.Fatal(err)
	}
	r, err := repo.Get(ctx, "jdoe")
	if err != nil || r.OTPHash != "h2" {
		t.Fatalf("reset = %+v, %v", r, err)
	}
	if err := repo.MarkUsed(ctx, "jdoe"); err != nil {
		t.Fatal(err)
	}
	if r, _ := repo.Get(ctx, "jdoe"); !r.Used {
		t.Error("reset not marked used")
	}
}

func TestMemoryTicketUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	ticket := &StoredTicket{ReporterID: "2021-0001", Issue: "projector", Status: domain.TicketStatusToDo, DateCreated: time.Now()}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.StaffFirstName, got.StaffLastName = "Ana", "Cruz"
	got.Status = "In Progress"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := repo.ListByReporter(ctx, "2021-0001")
	if rec := list[0].Record(); rec.AssigneeLabel() != "Ana Cruz" || rec.Status != "In Progress" {
		t.Errorf("record = %+v", rec)
	}
	if _, err := repo.GetByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(ctx, &StoredTicket{ID: 99}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

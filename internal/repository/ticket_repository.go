package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-client/internal/domain"
)

// StoredTicket is a ticket as the development service keeps it.
type StoredTicket struct {
	ID             int64
	ReporterID     string
	ReporterKind   domain.UserKind
	Issue          string
	Status         string
	DateCreated    time.Time
	DateFinished   *time.Time
	StaffFirstName string
	StaffLastName  string
}

// Record converts the stored ticket into its wire representation.
func (t StoredTicket) Record() domain.TicketRecord {
	rec := domain.TicketRecord{
		TicketID:    domain.TicketID(strconv.FormatInt(t.ID, 10)),
		Issue:       t.Issue,
		Status:      t.Status,
		DateCreated: domain.NewDate(t.DateCreated),
	}
	if t.DateFinished != nil {
		rec.DateFinished = domain.NewDate(*t.DateFinished)
	}
	if t.StaffFirstName != "" || t.StaffLastName != "" {
		rec.AssignedStaff = &domain.StaffName{FirstName: t.StaffFirstName, LastName: t.StaffLastName}
	}
	return rec
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *StoredTicket) error
	GetByID(ctx context.Context, id int64) (*StoredTicket, error)
	Update(ctx context.Context, ticket *StoredTicket) error
	ListByReporter(ctx context.Context, reporterID string) ([]StoredTicket, error)
}

type memoryTicketRepository struct {
	mu      sync.RWMutex
	nextID  int64
	tickets []StoredTicket
}

// NewMemoryTicketRepository returns an empty in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{nextID: 1}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *StoredTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id int64) (*StoredTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *StoredTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == ticket.ID {
			r.tickets[i] = *ticket
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryTicketRepository) ListByReporter(_ context.Context, reporterID string) ([]StoredTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []StoredTicket
	for _, t := range r.tickets {
		if t.ReporterID == reporterID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *StoredTicket) error {
	const query = `
        INSERT INTO tickets (reporter_id, reporter_kind, issue, status, date_created)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.ReporterID,
		string(ticket.ReporterKind),
		ticket.Issue,
		ticket.Status,
		ticket.DateCreated,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*StoredTicket, error) {
	const query = `
        SELECT id, reporter_id, reporter_kind, issue, status, date_created, date_finished,
               COALESCE(staff_first_name, ''), COALESCE(staff_last_name, '')
        FROM tickets WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := collectTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	return &tickets[0], nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *StoredTicket) error {
	const query = `
        UPDATE tickets
        SET status=$2, date_finished=$3, staff_first_name=NULLIF($4, ''), staff_last_name=NULLIF($5, '')
        WHERE id=$1`
	tag, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Status,
		ticket.DateFinished,
		ticket.StaffFirstName,
		ticket.StaffLastName,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) ListByReporter(ctx context.Context, reporterID string) ([]StoredTicket, error) {
	const query = `
        SELECT id, reporter_id, reporter_kind, issue, status, date_created, date_finished,
               COALESCE(staff_first_name, ''), COALESCE(staff_last_name, '')
        FROM tickets WHERE reporter_id=$1
        ORDER BY id DESC`
	rows, err := r.pool.Query(ctx, query, reporterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]StoredTicket, error) {
	var tickets []StoredTicket
	for rows.Next() {
		var (
			t    StoredTicket
			kind string
		)
		if err := rows.Scan(
			&t.ID,
			&t.ReporterID,
			&kind,
			&t.Issue,
			&t.Status,
			&t.DateCreated,
			&t.DateFinished,
			&t.StaffFirstName,
			&t.StaffLastName,
		); err != nil {
			return nil, err
		}
		t.ReporterKind = domain.ParseUserKind(kind)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

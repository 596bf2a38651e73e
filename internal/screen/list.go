package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// TicketLister fetches the signed-in user's tickets.
type TicketLister interface {
	ListTickets(ctx context.Context, sess domain.Session) (*client.TicketList, error)
}

// ListState is the snapshot published by the ticket list screen.
type ListState struct {
	Status
	Outcome client.ListOutcome
	Records []domain.TicketRecord
	// RefreshEnabled is always true; a refresh supersedes any fetch in flight.
	RefreshEnabled bool
}

// Empty reports whether the last fetch succeeded with nothing to show.
func (s ListState) Empty() bool {
	return s.Phase == PhaseSuccess && len(s.Records) == 0
}

// TicketListScreen shows the tickets of the signed-in user.
type TicketListScreen struct {
	machine
	sessions SessionLoader
	tickets  TicketLister

	status  Status
	outcome client.ListOutcome
	records []domain.TicketRecord
}

// NewTicketListScreen builds the screen.
func NewTicketListScreen(deps Deps, sessions SessionLoader, tickets TicketLister) *TicketListScreen {
	s := &TicketListScreen{sessions: sessions, tickets: tickets}
	s.init(events.ScreenTicketList, deps)
	s.store(PhaseIdle, s.snapshot())
	return s
}

// Open performs the initial fetch.
func (s *TicketListScreen) Open() uint64 {
	return s.Refresh()
}

// Refresh fetches from any state, including Loading and Error. Only the
// response to the latest call is applied. It returns the request's
// sequence number.
func (s *TicketListScreen) Refresh() uint64 {
	var seq uint64
	s.loop.Do(func() {
		seq = s.begin()
		s.status = Status{Phase: PhaseLoading, Seq: seq}
		s.emit()

		launch(&s.machine, seq, func(ctx context.Context) (*client.TicketList, error) {
			sess, ok := s.sessions.Load(ctx)
			if !ok {
				return nil, apperrors.NewUnauthenticated(MsgSessionMissing)
			}
			return s.tickets.ListTickets(ctx, sess)
		}, s.applyList)
	})
	return seq
}

func (s *TicketListScreen) applyList(list *client.TicketList, err error) {
	s.records = nil
	s.outcome = 0
	if err != nil {
		code := apperrors.CodeOf(err)
		s.logger.Warn("ticket list failed", zap.String("code", code), zap.Error(err))
		s.status = Status{Phase: PhaseError, Message: listMessage(err), ErrCode: code, Seq: s.seq}
		s.emit()
		return
	}

	s.outcome = list.Outcome
	s.records = list.Records
	msg := ""
	switch {
	case list.Outcome == client.ListNoContent:
		msg = MsgNoTicketsFound
	case len(list.Records) == 0:
		msg = MsgNoTicketsAvail
	}
	s.status = Status{Phase: PhaseSuccess, Message: msg, Seq: s.seq}
	s.emit()
}

func (s *TicketListScreen) snapshot() ListState {
	records := make([]domain.TicketRecord, len(s.records))
	copy(records, s.records)
	return ListState{
		Status:         s.status,
		Outcome:        s.outcome,
		Records:        records,
		RefreshEnabled: !s.closed,
	}
}

func (s *TicketListScreen) emit() {
	s.store(s.status.Phase, s.snapshot())
}

// State returns the latest snapshot.
func (s *TicketListScreen) State() ListState {
	st, _ := s.latest().(ListState)
	return st
}

// Close stops the screen. Responses still in flight are discarded.
func (s *TicketListScreen) Close() {
	s.shutdown()
}

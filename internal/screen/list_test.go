package screen

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

type listReply struct {
	list *client.TicketList
	err  error
}

// pendingLister hands every call to the test and blocks until it is answered.
type pendingLister struct {
	calls chan chan listReply
	count atomic.Int32
}

func newPendingLister() *pendingLister {
	return &pendingLister{calls: make(chan chan listReply, 8)}
}

func (p *pendingLister) ListTickets(ctx context.Context, _ domain.Session) (*client.TicketList, error) {
	p.count.Add(1)
	reply := make(chan listReply, 1)
	p.calls <- reply
	select {
	case r := <-reply:
		return r.list, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pendingLister) next(t *testing.T) chan listReply {
	t.Helper()
	select {
	case c := <-p.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("no list call arrived")
		return nil
	}
}

func records(ids ...string) *client.TicketList {
	list := &client.TicketList{Outcome: client.ListTickets}
	for _, id := range ids {
		list.Records = append(list.Records, domain.TicketRecord{TicketID: domain.TicketID(id), Issue: "issue " + id})
	}
	return list
}

func TestListAppliesOnlyLatestOfOverlappingFetches(t *testing.T) {
	cases := []struct {
		name       string
		olderFirst bool
	}{
		{name: "older resolves last", olderFirst: false},
		{name: "older resolves first", olderFirst: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lister := newPendingLister()
			deps, rec, _ := testDeps(t)
			s := NewTicketListScreen(deps, staticSessions{sess: studentSession, ok: true}, lister)
			defer s.Close()

			first := s.Open()
			firstCall := lister.next(t)
			second := s.Refresh()
			secondCall := lister.next(t)
			if second <= first {
				t.Fatalf("sequence did not advance: %d then %d", first, second)
			}

			isDiscard := func(e events.Event) bool {
				return e.Type == events.EventResponseDiscarded && e.Seq == first
			}
			if tc.olderFirst {
				firstCall <- listReply{list: records("old")}
				rec.waitFor(t, "discard of first fetch", isDiscard)
				secondCall <- listReply{list: records("new-1", "new-2")}
				rec.waitPhase(t, PhaseSuccess)
			} else {
				secondCall <- listReply{list: records("new-1", "new-2")}
				rec.waitPhase(t, PhaseSuccess)
				firstCall <- listReply{list: records("old")}
				rec.waitFor(t, "discard of first fetch", isDiscard)
			}

			st := s.State()
			if st.Seq != second {
				t.Errorf("applied seq = %d, want %d", st.Seq, second)
			}
			if len(st.Records) != 2 || st.Records[0].TicketID != "new-1" {
				t.Fatalf("records = %+v", st.Records)
			}
		})
	}
}

func TestListDistinguishesNoContentFromEmptyArray(t *testing.T) {
	lister := newPendingLister()
	deps, rec, _ := testDeps(t)
	s := NewTicketListScreen(deps, staticSessions{sess: studentSession, ok: true}, lister)
	defer s.Close()

	s.Open()
	lister.next(t) <- listReply{list: &client.TicketList{Outcome: client.ListNoContent}}
	rec.waitPhase(t, PhaseSuccess)
	noContent := s.State()

	s.Refresh()
	lister.next(t) <- listReply{list: &client.TicketList{Outcome: client.ListTickets, Records: []domain.TicketRecord{}}}
	rec.waitPhase(t, PhaseSuccess)
	empty := s.State()

	if noContent.Outcome != client.ListNoContent || noContent.Message != MsgNoTicketsFound {
		t.Errorf("204 state = %+v", noContent)
	}
	if empty.Outcome != client.ListTickets || empty.Message != MsgNoTicketsAvail {
		t.Errorf("empty 200 state = %+v", empty)
	}
	if !noContent.Empty() || !empty.Empty() {
		t.Error("both states should report Empty")
	}
}

func TestListWithoutSessionNeverCallsService(t *testing.T) {
	lister := newPendingLister()
	deps, rec, _ := testDeps(t)
	s := NewTicketListScreen(deps, staticSessions{sess: domain.Session{Token: "tok", UserType: "student"}, ok: false}, lister)
	defer s.Close()

	s.Open()
	rec.waitPhase(t, PhaseError)
	st := s.State()
	if st.ErrCode != apperrors.CodeUnauthenticated || st.Message != MsgSessionMissing {
		t.Errorf("state = %+v", st.Status)
	}
	if n := lister.count.Load(); n != 0 {
		t.Fatalf("service called %d times", n)
	}
}

func TestListRefreshRecoversFromError(t *testing.T) {
	lister := newPendingLister()
	deps, rec, _ := testDeps(t)
	s := NewTicketListScreen(deps, staticSessions{sess: studentSession, ok: true}, lister)
	defer s.Close()

	s.Open()
	lister.next(t) <- listReply{err: apperrors.NewNetworkFailureStatus(500, "down")}
	rec.waitPhase(t, PhaseError)
	st := s.State()
	if st.Message != MsgListFailed || !st.RefreshEnabled {
		t.Fatalf("error state = %+v", st)
	}

	s.Refresh()
	if s.State().Phase != PhaseLoading {
		t.Fatal("refresh did not re-enter loading")
	}
	lister.next(t) <- listReply{list: records("7")}
	rec.waitPhase(t, PhaseSuccess)
	st = s.State()
	if st.Message != "" || len(st.Records) != 1 {
		t.Errorf("state after refresh = %+v", st)
	}
}

func TestListErrorClearsPreviousOutcome(t *testing.T) {
	lister := newPendingLister()
	deps, rec, _ := testDeps(t)
	s := NewTicketListScreen(deps, staticSessions{sess: studentSession, ok: true}, lister)
	defer s.Close()

	s.Open()
	lister.next(t) <- listReply{list: &client.TicketList{Outcome: client.ListNoContent}}
	rec.waitPhase(t, PhaseSuccess)
	if s.State().Outcome != client.ListNoContent {
		t.Fatalf("outcome = %v, want NO_CONTENT", s.State().Outcome)
	}

	s.Refresh()
	lister.next(t) <- listReply{err: apperrors.NewNetworkFailureStatus(502, "bad gateway")}
	rec.waitPhase(t, PhaseError)
	st := s.State()
	if st.Outcome == client.ListNoContent || len(st.Records) != 0 {
		t.Errorf("error state kept stale result: outcome=%v records=%d", st.Outcome, len(st.Records))
	}
}

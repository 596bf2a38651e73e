package screen

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
)

const waitTimeout = 5 * time.Second

var studentSession = domain.Session{Token: "tok", UserID: "2021-0001", UserType: "student", UserName: "Juan"}

type staticSessions struct {
	sess domain.Session
	ok   bool
}

func (s staticSessions) Load(context.Context) (domain.Session, bool) { return s.sess, s.ok }

// recorder collects every event a screen publishes.
type recorder struct {
	ch chan events.Event
}

func newRecorder() (*recorder, events.Dispatcher) {
	r := &recorder{ch: make(chan events.Event, 256)}
	d := events.NewInMemoryDispatcher(nil)
	for _, typ := range []events.EventType{
		events.EventScreenStateChanged,
		events.EventResponseDiscarded,
		events.EventTicketCreated,
		events.EventPasswordReset,
	} {
		d.Subscribe(typ, func(_ context.Context, e events.Event) error {
			r.ch <- e
			return nil
		})
	}
	return r, d
}

// waitFor consumes events until match returns true.
func (r *recorder) waitFor(t *testing.T, what string, match func(events.Event) bool) events.Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case e := <-r.ch:
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
			return events.Event{}
		}
	}
}

func (r *recorder) waitPhase(t *testing.T, phase Phase) events.Event {
	t.Helper()
	return r.waitFor(t, "phase "+phase.String(), func(e events.Event) bool {
		return e.Type == events.EventScreenStateChanged && e.Phase == phase.String()
	})
}

func testDeps(t *testing.T) (Deps, *recorder, *clock.FakeClock) {
	t.Helper()
	rec, d := newRecorder()
	fc := clock.Fake(time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local))
	return Deps{Clock: fc, Dispatcher: d}, rec, fc
}

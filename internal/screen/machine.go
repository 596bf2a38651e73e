package screen

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
)

// Phase is the observable state of a screen.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "LOADING"
	case PhaseSuccess:
		return "SUCCESS"
	case PhaseError:
		return "ERROR"
	default:
		return "IDLE"
	}
}

// Status is the part of a snapshot common to every screen.
type Status struct {
	Phase   Phase
	Message string
	// ErrCode is the errorutil code of the last failure, empty otherwise.
	ErrCode string
	// Seq is the sequence number of the most recently issued request.
	Seq uint64
}

// Deps are the collaborators shared by all screens.
type Deps struct {
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Dispatcher == nil {
		d.Dispatcher = events.NewInMemoryDispatcher(d.Logger)
	}
	d.Logger = observability.OrNop(d.Logger)
	return d
}

// machine is embedded by each screen. seq and closed belong to the loop
// goroutine; last is guarded by mu so State never waits on the loop.
type machine struct {
	name       string
	loop       *Loop
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	seq    uint64
	closed bool

	mu   sync.Mutex
	last any
}

func (m *machine) init(name string, deps Deps) {
	deps = deps.withDefaults()
	m.name = name
	m.loop = NewLoop()
	m.clock = deps.Clock
	m.dispatcher = deps.Dispatcher
	m.logger = deps.Logger.With(zap.String("screen", name))
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

// begin issues a new request sequence number. Loop only.
func (m *machine) begin() uint64 {
	m.seq++
	return m.seq
}

// current reports whether a completion for seq may still be applied. Loop only.
func (m *machine) current(seq uint64) bool {
	return !m.closed && seq == m.seq
}

func (m *machine) publish(typ events.EventType, phase Phase, payload any) {
	_ = m.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Screen:    m.name,
		Phase:     phase.String(),
		Seq:       m.seq,
		Timestamp: m.clock.Now(),
		Payload:   payload,
	})
}

// store records snap as the latest snapshot and publishes it. Loop only.
func (m *machine) store(phase Phase, snap any) {
	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()
	m.publish(events.EventScreenStateChanged, phase, snap)
}

func (m *machine) latest() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *machine) discard(seq uint64) {
	m.logger.Debug("discarding stale response", zap.Uint64("seq", seq), zap.Uint64("current", m.seq), zap.Bool("closed", m.closed))
	_ = m.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventResponseDiscarded,
		Screen:    m.name,
		Seq:       seq,
		Timestamp: m.clock.Now(),
	})
}

// shutdown tears the screen down: pending completions are dropped and the
// request context is cancelled.
func (m *machine) shutdown() {
	m.loop.Do(func() { m.closed = true })
	m.cancel()
	m.loop.Close()
}

// launch runs op off the loop and applies its result on the loop, unless a
// newer request was issued or the screen was closed in the meantime.
func launch[R any](m *machine, seq uint64, op func(context.Context) (R, error), apply func(R, error)) {
	go func() {
		res, err := op(m.ctx)
		posted := m.loop.Post(func() {
			if !m.current(seq) {
				m.discard(seq)
				return
			}
			apply(res, err)
		})
		if !posted {
			m.logger.Debug("screen closed, completion dropped", zap.Uint64("seq", seq))
		}
	}()
}

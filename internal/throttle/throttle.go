// Package throttle implements the client-side cooldown applied to the submit
// control after a ticket is created. It does not prevent duplicates created
// from another device or after a restart.
package throttle

import (
	"sync"
	"time"

	"github.com/spec-kit/ticket-client/internal/clock"
)

// DefaultWindow is the cooldown after a successful submission.
const DefaultWindow = 5 * time.Second

// Throttle locks a control for a fixed window after each success.
type Throttle struct {
	clock    clock.Clock
	window   time.Duration
	onUnlock func()

	mu          sync.Mutex
	lockedUntil time.Time
	timer       clock.Timer
}

// New returns a Throttle. onUnlock, if set, is called when a window expires
// so the owner can re-enable the control without user input.
func New(c clock.Clock, window time.Duration, onUnlock func()) *Throttle {
	if c == nil {
		c = clock.Real()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttle{clock: c, window: window, onUnlock: onUnlock}
}

// ArmAfterSuccess starts a fresh window from now and returns its end. A
// window still running is replaced, not extended.
func (t *Throttle) ArmAfterSuccess() time.Time {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.lockedUntil = t.clock.Now().Add(t.window)
	until := t.lockedUntil
	var timer clock.Timer
	timer = t.clock.AfterFunc(t.window, func() {
		t.mu.Lock()
		current := t.timer == timer
		if current {
			t.timer = nil
		}
		t.mu.Unlock()
		if current && t.onUnlock != nil {
			t.onUnlock()
		}
	})
	t.timer = timer
	t.mu.Unlock()
	return until
}

// IsLocked reports whether now falls inside the current window.
func (t *Throttle) IsLocked(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Before(t.lockedUntil)
}

// LockedUntil returns the end of the latest window.
func (t *Throttle) LockedUntil() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lockedUntil
}

// Stop cancels a pending unlock notification.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Package screen holds the per-screen state machines. Each screen owns a
// Loop: user actions and network completions run one at a time on it, so
// screen state is only ever touched from the loop goroutine.
package screen

import "sync"

const loopBuffer = 64

// Loop is a single-goroutine event queue.
type Loop struct {
	queue chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewLoop starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		queue: make(chan func(), loopBuffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Post enqueues fn. It reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs fn on the loop and waits for it. It must not be called from the
// loop goroutine. It reports false if the loop closed before fn ran.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the loop after the event in progress, dropping queued events.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

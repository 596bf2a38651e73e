package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance. Handler errors are
// logged and do not stop delivery to the remaining handlers.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event, in
// subscription order. Handlers must not call back into the publishing
// screen synchronously.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("screen", event.Screen),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// RegisterTransitionLogger logs every screen event at debug level, and
// ticket creation and password reset at info.
func RegisterTransitionLogger(d Dispatcher, logger *zap.Logger) {
	if d == nil || logger == nil {
		return
	}
	d.Subscribe(EventScreenStateChanged, func(_ context.Context, e Event) error {
		logger.Debug("screen state changed",
			zap.String("screen", e.Screen),
			zap.String("phase", e.Phase),
			zap.Uint64("seq", e.Seq))
		return nil
	})
	d.Subscribe(EventResponseDiscarded, func(_ context.Context, e Event) error {
		logger.Debug("stale response discarded",
			zap.String("screen", e.Screen),
			zap.Uint64("seq", e.Seq))
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		logger.Info("ticket created", zap.String("screen", e.Screen), zap.Any("payload", e.Payload))
		return nil
	})
	d.Subscribe(EventPasswordReset, func(_ context.Context, e Event) error {
		logger.Info("password reset completed", zap.String("screen", e.Screen))
		return nil
	})
}

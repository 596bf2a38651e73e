// Package worker runs background delivery for the development ticket
// service.
package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
)

const queueSize = 32

// Deliverer sends an issued OTP to its recipient.
type Deliverer interface {
	DeliverOtp(ctx context.Context, notice events.OtpIssued) error
}

// NotificationWorker moves OTP delivery off the request path.
type NotificationWorker struct {
	deliverer Deliverer
	logger    *zap.Logger
	queue     chan events.OtpIssued
	wg        sync.WaitGroup
}

// StartNotificationWorker subscribes to EventOtpIssued and delivers queued
// notices until ctx is done.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, deliverer Deliverer, logger *zap.Logger) *NotificationWorker {
	w := &NotificationWorker{
		deliverer: deliverer,
		logger:    observability.OrNop(logger),
		queue:     make(chan events.OtpIssued, queueSize),
	}
	dispatcher.Subscribe(events.EventOtpIssued, w.enqueue)

	w.wg.Add(1)
	go w.run(ctx)
	return w
}

func (w *NotificationWorker) enqueue(ctx context.Context, event events.Event) error {
	notice, ok := event.Payload.(events.OtpIssued)
	if !ok {
		return fmt.Errorf("otp_issued: unexpected payload %T", event.Payload)
	}
	select {
	case w.queue <- notice:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("notification queue full, dropping otp for %s", notice.Username)
	}
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case notice := <-w.queue:
			if err := w.deliverer.DeliverOtp(ctx, notice); err != nil {
				w.logger.Warn("otp delivery failed", zap.String("username", notice.Username), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until the worker has stopped.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
)

// NotificationService delivers OTPs. There is no mail transport in the
// development service: delivery is a log line, and the code itself is only
// included when logOTP is set.
type NotificationService struct {
	logger *zap.Logger
	logOTP bool
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, logOTP bool) *NotificationService {
	return &NotificationService{logger: observability.OrNop(logger), logOTP: logOTP}
}

// DeliverOtp sends notice to its recipient.
func (n *NotificationService) DeliverOtp(_ context.Context, notice events.OtpIssued) error {
	fields := []zap.Field{
		zap.String("username", notice.Username),
		zap.String("email", notice.Email),
		zap.Time("expires_at", notice.ExpiresAt),
	}
	if n.logOTP {
		fields = append(fields, zap.String("otp", notice.OTP))
	}
	n.logger.Info("sendEmailNotificationStub", fields...)
	return nil
}

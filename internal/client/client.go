// Package client talks to the ticket service over HTTP and turns every
// exchange into a typed outcome: a result value, or an errorutil.DomainError
// carrying one of VALIDATION_FAILED, UNAUTHENTICATED, REJECTED or
// NETWORK_FAILURE. Nothing is retried here; retries are user initiated.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/observability"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// Operation names used for logging and metrics.
const (
	OpCreateTicket = "create_ticket"
	OpListTickets  = "list_tickets"
	OpRequestOtp   = "request_otp"
	OpConfirmOtp   = "confirm_otp"
	OpLogin        = "login"
)

// Endpoint paths on the ticket service.
const (
	PathCreateTicket   = "/TicketService/ticket/add"
	PathUserTickets    = "/TicketService/tickets/user/"
	PathForgotPassword = "/user/forgot-password"
	PathVerifyForgot   = "/user/verify-forgot-password"
	PathLogin          = "/user/login"
)

// HeaderRequestID correlates client logs with service logs.
const HeaderRequestID = "X-Request-ID"

// Option configures a client.
type Option func(*base)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) { b.http = c }
}

// WithTimeout bounds each exchange. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(b *base) { b.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *base) { b.logger = observability.OrNop(l) }
}

// WithMetrics records every exchange and outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

type base struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

type response struct {
	status    int
	body      []byte
	requestID string
}

func newBase(baseURL string, opts []Option) base {
	b := base{
		http:    &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// send performs one exchange. Any failure before a response status is
// available is a network failure.
func (b *base) send(ctx context.Context, op, method, path, token string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := b.http.Do(req)
	if err != nil {
		b.metrics.RecordRequest(op, 0, time.Since(start))
		b.logger.Warn("request failed",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, apperrors.NewNetworkFailure(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	b.metrics.RecordRequest(op, resp.StatusCode, time.Since(start))
	if err != nil {
		b.logger.Warn("read response failed",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, apperrors.NewNetworkFailure(fmt.Errorf("read response: %w", err))
	}

	b.logger.Debug("request completed",
		zap.String("operation", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return &response{status: resp.StatusCode, body: respBody, requestID: requestID}, nil
}

// logRejected records the raw body of a non-success response. Bodies are
// diagnostic only and never parsed.
func (b *base) logRejected(op string, resp *response) {
	b.logger.Error("service rejected request",
		zap.String("operation", op),
		zap.String("request_id", resp.requestID),
		zap.Int("status", resp.status),
		zap.String("body", string(resp.body)))
}

// outcome records the typed outcome of op and returns err unchanged.
func (b *base) outcome(op string, err error) error {
	code := "OK"
	if err != nil {
		code = apperrors.CodeOf(err)
	}
	b.metrics.RecordOutcome(op, code)
	return err
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/domain"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// MsgSessionMissing is reported for every operation attempted without a
// complete session.
const MsgSessionMissing = "User information or token not found. Please log in again."

// Created is the outcome of a successful create.
type Created struct {
	StatusCode int
	// Record is the ticket echoed by the service, when it sent one.
	Record *domain.TicketRecord
}

// ListOutcome distinguishes a 200 response from an explicit 204.
type ListOutcome int

const (
	ListTickets ListOutcome = iota
	ListNoContent
)

func (o ListOutcome) String() string {
	if o == ListNoContent {
		return "NO_CONTENT"
	}
	return "TICKETS"
}

// TicketList is the outcome of a successful list. A 200 with an empty array
// has Outcome ListTickets and zero records.
type TicketList struct {
	Outcome ListOutcome
	Records []domain.TicketRecord
}

// TicketClient performs ticket operations for the signed-in user.
type TicketClient struct {
	base
}

// NewTicketClient builds a client for the service at baseURL.
func NewTicketClient(baseURL string, opts ...Option) *TicketClient {
	return &TicketClient{base: newBase(baseURL, opts)}
}

// CreateTicket submits draft on behalf of sess. Any 2xx is Created; any
// other status is a REJECTED error carrying the raw body.
func (c *TicketClient) CreateTicket(ctx context.Context, sess domain.Session, draft domain.TicketDraft) (*Created, error) {
	if !sess.Valid() {
		return nil, c.outcome(OpCreateTicket, apperrors.NewUnauthenticated(MsgSessionMissing))
	}
	draft.Kind = sess.Kind()

	payload := dto.NewCreateTicketRequest(draft, sess.UserID)
	resp, err := c.send(ctx, OpCreateTicket, http.MethodPost, PathCreateTicket, sess.Token, payload)
	if err != nil {
		return nil, c.outcome(OpCreateTicket, fmt.Errorf("create ticket: %w", err))
	}
	if resp.status < 200 || resp.status > 299 {
		c.logRejected(OpCreateTicket, resp)
		return nil, c.outcome(OpCreateTicket, apperrors.NewRejected(resp.status, string(resp.body)))
	}

	created := &Created{StatusCode: resp.status}
	if len(resp.body) > 0 {
		var echoed dto.TicketResponse
		if err := json.Unmarshal(resp.body, &echoed); err == nil {
			record := echoed.Record()
			created.Record = &record
		} else {
			c.logger.Debug("create response not a ticket", zap.Error(err))
		}
	}
	return created, c.outcome(OpCreateTicket, nil)
}

// ListTickets fetches the tickets reported by sess.UserID. A missing
// session fails before any request is made. Statuses other than 200 and 204
// are NETWORK_FAILURE.
func (c *TicketClient) ListTickets(ctx context.Context, sess domain.Session) (*TicketList, error) {
	if !sess.Valid() {
		return nil, c.outcome(OpListTickets, apperrors.NewUnauthenticated(MsgSessionMissing))
	}

	path := PathUserTickets + url.PathEscape(sess.UserID)
	resp, err := c.send(ctx, OpListTickets, http.MethodGet, path, sess.Token, nil)
	if err != nil {
		return nil, c.outcome(OpListTickets, fmt.Errorf("list tickets: %w", err))
	}

	switch resp.status {
	case http.StatusOK:
		records := []domain.TicketRecord{}
		if len(resp.body) > 0 {
			if err := json.Unmarshal(resp.body, &records); err != nil {
				c.logger.Error("decode ticket list", zap.Error(err), zap.String("body", string(resp.body)))
				return nil, c.outcome(OpListTickets, apperrors.NewNetworkFailure(fmt.Errorf("decode ticket list: %w", err)))
			}
			if records == nil {
				records = []domain.TicketRecord{}
			}
		}
		for _, r := range records {
			if r.DateCreated.Unparsed() || r.DateFinished.Unparsed() {
				c.logger.Warn("unreadable ticket date",
					zap.String("ticket_id", string(r.TicketID)),
					zap.String("date_created", r.DateCreated.Raw),
					zap.String("date_finished", r.DateFinished.Raw))
			}
		}
		return &TicketList{Outcome: ListTickets, Records: records}, c.outcome(OpListTickets, nil)
	case http.StatusNoContent:
		return &TicketList{Outcome: ListNoContent}, c.outcome(OpListTickets, nil)
	default:
		c.logRejected(OpListTickets, resp)
		return nil, c.outcome(OpListTickets, apperrors.NewNetworkFailureStatus(resp.status, string(resp.body)))
	}
}

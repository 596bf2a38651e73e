package screen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/throttle"
	"github.com/spec-kit/ticket-client/internal/validation"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// SessionLoader reads the persisted session.
type SessionLoader interface {
	Load(ctx context.Context) (domain.Session, bool)
}

// TicketCreator submits a ticket draft.
type TicketCreator interface {
	CreateTicket(ctx context.Context, sess domain.Session, draft domain.TicketDraft) (*client.Created, error)
}

// CreateState is the snapshot published by the create-ticket screen.
type CreateState struct {
	Status
	IssueText    string
	CreatedDate  string
	TicketStatus string
	Reporter     string
	// ValidationMessage is set while the empty-issue message should show:
	// after a submit attempt and until the text becomes valid.
	ValidationMessage string
	SubmitEnabled     bool
	LockedUntil       time.Time
	Created           *client.Created
}

// CreateTicketScreen composes and submits one ticket at a time.
type CreateTicketScreen struct {
	machine
	sessions SessionLoader
	tickets  TicketCreator
	throttle *throttle.Throttle

	sess      domain.Session
	hasSess   bool
	draft     domain.TicketDraft
	attempted bool
	status    Status
	created   *client.Created
}

// NewCreateTicketScreen builds the screen. window <= 0 uses
// throttle.DefaultWindow.
func NewCreateTicketScreen(deps Deps, sessions SessionLoader, tickets TicketCreator, window time.Duration) *CreateTicketScreen {
	s := &CreateTicketScreen{sessions: sessions, tickets: tickets}
	s.init(events.ScreenCreateTicket, deps)
	s.throttle = throttle.New(s.clock, window, func() {
		s.loop.Post(func() {
			if s.closed {
				return
			}
			s.logger.Debug("submit cooldown expired")
			s.emit()
		})
	})
	s.store(PhaseIdle, s.snapshot())
	return s
}

// Open loads the session and stamps a fresh draft.
func (s *CreateTicketScreen) Open() {
	s.loop.Do(func() {
		s.sess, s.hasSess = s.sessions.Load(s.ctx)
		s.draft = domain.NewTicketDraft(s.clock.Now(), s.sess.Kind())
		s.attempted = false
		s.status = Status{Phase: PhaseIdle}
		if !s.hasSess {
			s.fail(apperrors.NewUnauthenticated(MsgSessionMissing))
			return
		}
		s.emit()
	})
}

// SetIssueText updates the draft. A validation error clears as soon as the
// text is valid.
func (s *CreateTicketScreen) SetIssueText(text string) {
	s.loop.Do(func() {
		s.draft.IssueText = text
		if s.status.ErrCode == apperrors.CodeValidation && validation.CanSubmit(s.draft).OK {
			s.status = Status{Phase: PhaseIdle, Seq: s.seq}
		}
		s.emit()
	})
}

// Submit validates the draft and, if valid, sends it. It reports whether a
// request was issued.
func (s *CreateTicketScreen) Submit() bool {
	issued := false
	s.loop.Do(func() {
		if !s.submitEnabled() {
			s.logger.Debug("submit ignored while disabled")
			return
		}
		s.attempted = true
		if res := validation.CanSubmit(s.draft); !res.OK {
			s.fail(res.Err())
			return
		}
		if !s.hasSess {
			s.sess, s.hasSess = s.sessions.Load(s.ctx)
			if !s.hasSess {
				s.fail(apperrors.NewUnauthenticated(MsgSessionMissing))
				return
			}
			s.draft.ReporterRole = s.sess.Kind().ReporterRole()
			s.draft.Kind = s.sess.Kind()
		}
		if s.draft.CreatedDate.IsZero() {
			text := s.draft.IssueText
			s.draft = domain.NewTicketDraft(s.clock.Now(), s.sess.Kind())
			s.draft.IssueText = text
		}

		seq := s.begin()
		s.status = Status{Phase: PhaseLoading, Seq: seq}
		s.created = nil
		s.emit()
		issued = true

		sess, draft := s.sess, s.draft
		launch(&s.machine, seq, func(ctx context.Context) (*client.Created, error) {
			return s.tickets.CreateTicket(ctx, sess, draft)
		}, s.applyCreate)
	})
	return issued
}

func (s *CreateTicketScreen) applyCreate(created *client.Created, err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.draft.IssueText = ""
	s.attempted = false
	s.created = created
	until := s.throttle.ArmAfterSuccess()
	s.logger.Info("ticket submitted", zap.Time("locked_until", until))
	s.status = Status{Phase: PhaseSuccess, Message: MsgCreateSucceeded, Seq: s.seq}
	s.emit()
	s.publish(events.EventTicketCreated, PhaseSuccess, created)
}

func (s *CreateTicketScreen) fail(err error) {
	code := apperrors.CodeOf(err)
	msg := createMessage(err)
	if code == apperrors.CodeValidation {
		msg = validation.MsgEmptyIssue
	}
	s.status = Status{Phase: PhaseError, Message: msg, ErrCode: code, Seq: s.seq}
	s.emit()
}

func (s *CreateTicketScreen) submitEnabled() bool {
	return !s.closed && s.status.Phase != PhaseLoading && !s.throttle.IsLocked(s.clock.Now())
}

func (s *CreateTicketScreen) snapshot() CreateState {
	st := CreateState{
		Status:        s.status,
		IssueText:     s.draft.IssueText,
		TicketStatus:  s.draft.Status,
		Reporter:      s.draft.ReporterRole,
		SubmitEnabled: s.submitEnabled(),
		LockedUntil:   s.throttle.LockedUntil(),
		Created:       s.created,
	}
	if !s.draft.CreatedDate.IsZero() {
		st.CreatedDate = s.draft.CreatedDateString()
	}
	if s.attempted {
		if res := validation.CanSubmit(s.draft); !res.OK {
			st.ValidationMessage = res.Message()
		}
	}
	return st
}

func (s *CreateTicketScreen) emit() {
	s.store(s.status.Phase, s.snapshot())
}

// State returns the latest snapshot.
func (s *CreateTicketScreen) State() CreateState {
	st, _ := s.latest().(CreateState)
	return st
}

// Close stops the screen. Responses still in flight are discarded.
func (s *CreateTicketScreen) Close() {
	s.throttle.Stop()
	s.shutdown()
}

package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/observability"
)

// Persisted key names, shared with the login flow that writes them.
const (
	KeyAuthToken = "authToken"
	KeyUserID    = "userId"
	KeyUserType  = "userType"
	KeyUserName  = "userName"
)

// ErrNotFound is returned by a KeyValue when the key has never been set.
var ErrNotFound = errors.New("session: key not found")

// KeyValue is the persistent client storage the session is read from.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
}

// Writer is implemented by backends that the login flow can write to.
type Writer interface {
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store loads the authenticated identity from a KeyValue backend.
type Store struct {
	kv     KeyValue
	logger *zap.Logger
}

// NewStore wraps kv.
func NewStore(kv KeyValue, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: observability.OrNop(logger)}
}

// Load returns the session, or false when any of token, user id or user type
// is missing. Storage errors are logged and reported as absent.
func (s *Store) Load(ctx context.Context) (domain.Session, bool) {
	var sess domain.Session
	fields := []struct {
		key string
		dst *string
	}{
		{KeyAuthToken, &sess.Token},
		{KeyUserID, &sess.UserID},
		{KeyUserType, &sess.UserType},
	}
	for _, f := range fields {
		val, err := s.kv.Get(ctx, f.key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Info("session field missing; log in again", zap.String("key", f.key))
			} else {
				s.logger.Warn("session storage read failed", zap.String("key", f.key), zap.Error(err))
			}
			return domain.Session{}, false
		}
		*f.dst = val
	}
	if !sess.Valid() {
		s.logger.Info("session incomplete; log in again")
		return domain.Session{}, false
	}
	if name, err := s.kv.Get(ctx, KeyUserName); err == nil {
		sess.UserName = name
	}
	return sess, true
}

// DisplayName returns the stored user name for greetings, or "User".
func (s *Store) DisplayName(ctx context.Context) string {
	name, err := s.kv.Get(ctx, KeyUserName)
	if err != nil || name == "" {
		return "User"
	}
	return name
}

// Save writes all session fields. It stands in for the external login flow.
func Save(ctx context.Context, w Writer, sess domain.Session) error {
	values := map[string]string{
		KeyAuthToken: sess.Token,
		KeyUserID:    sess.UserID,
		KeyUserType:  sess.UserType,
		KeyUserName:  sess.UserName,
	}
	for key, val := range values {
		if err := w.Set(ctx, key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Clear removes all session fields.
func Clear(ctx context.Context, w Writer) error {
	for _, key := range []string{KeyAuthToken, KeyUserID, KeyUserType, KeyUserName} {
		if err := w.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

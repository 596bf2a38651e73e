package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/domain"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// AuthClient signs in against the ticket service. The resulting session is
// what the rest of the client reads back from the session store.
type AuthClient struct {
	base
}

// NewAuthClient builds a client for the service at baseURL.
func NewAuthClient(baseURL string, opts ...Option) *AuthClient {
	return &AuthClient{base: newBase(baseURL, opts)}
}

// Login exchanges credentials for a session. A 200 whose body lacks any of
// token, userId or userType is REJECTED like any other failure.
func (c *AuthClient) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, c.outcome(OpLogin, apperrors.NewValidationError("Please enter both your username and password", nil))
	}
	resp, err := c.send(ctx, OpLogin, http.MethodPost, PathLogin, "", dto.UserLoginRequest{Username: username, Password: password})
	if err != nil {
		return domain.Session{}, c.outcome(OpLogin, fmt.Errorf("login: %w", err))
	}
	if resp.status != http.StatusOK {
		c.logRejected(OpLogin, resp)
		return domain.Session{}, c.outcome(OpLogin, apperrors.NewRejected(resp.status, string(resp.body)))
	}

	var auth dto.AuthResponse
	if err := json.Unmarshal(resp.body, &auth); err != nil {
		return domain.Session{}, c.outcome(OpLogin, apperrors.NewRejected(resp.status, string(resp.body)))
	}
	sess := domain.Session{Token: auth.Token, UserID: auth.UserID, UserType: auth.UserType, UserName: auth.UserName}
	if !sess.Valid() {
		return domain.Session{}, c.outcome(OpLogin, apperrors.NewRejected(resp.status, string(resp.body)))
	}
	return sess, c.outcome(OpLogin, nil)
}

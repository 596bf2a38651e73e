package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/auth"
	"github.com/spec-kit/ticket-client/internal/clock"
	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/repository"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

var (
	errInvalidCredentials = apperrors.NewStatusError(http.StatusUnauthorized, apperrors.CodeUnauthenticated, "invalid credentials")
	errUnknownAccount     = apperrors.NewStatusError(http.StatusNotFound, apperrors.CodeNotFound, "no account matches that username and email")
	errInvalidOTP         = apperrors.NewStatusError(http.StatusUnauthorized, apperrors.CodeUnauthenticated, "invalid or expired otp")
)

// LoginResult is what a successful login returns.
type LoginResult struct {
	Account   *repository.Account
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login and OTP password recovery.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	bcryptCost int
	otpTTL     time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Clock             clock.Clock
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.StubConfig, deps AuthDependencies) *AuthService {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	otpTTL := time.Duration(cfg.OTPTTLMinutes) * time.Minute
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     observability.OrNop(deps.Logger),
		bcryptCost: cfg.BcryptCost,
		otpTTL:     otpTTL,
	}
}

// Login authenticates an account by username.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, errInvalidCredentials
	}
	token, exp, err := s.tokenMgr.GenerateToken(account.ID, string(account.Kind))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Account: account, Token: token, ExpiresAt: exp}, nil
}

// RequestPasswordReset issues a fresh OTP for the account matching both
// username and email. Any earlier OTP for that username stops working.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username, email string) error {
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errUnknownAccount
		}
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(account.Email), strings.TrimSpace(email)) {
		return errUnknownAccount
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(otp, s.bcryptCost)
	if err != nil {
		return err
	}
	reset := &repository.PasswordReset{
		Username:  account.Username,
		AccountID: account.ID,
		OTPHash:   hash,
		ExpiresAt: s.clock.Now().Add(s.otpTTL),
	}
	if err := s.resets.Save(ctx, reset); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventOtpIssued,
			Timestamp: s.clock.Now(),
			Payload: events.OtpIssued{
				Username:  account.Username,
				Email:     account.Email,
				OTP:       otp,
				ExpiresAt: reset.ExpiresAt,
			},
		})
	}
	return nil
}

// ConfirmPasswordReset redeems the OTP issued to username and replaces the
// password. An OTP is accepted once.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, username, otp, newPassword string) error {
	reset, err := s.resets.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errInvalidOTP
		}
		return err
	}
	if reset.Used || s.clock.Now().After(reset.ExpiresAt) {
		return errInvalidOTP
	}
	if err := auth.ComparePassword(reset.OTPHash, otp); err != nil {
		return errInvalidOTP
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, reset.AccountID, hash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, username); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("username", reset.Username))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

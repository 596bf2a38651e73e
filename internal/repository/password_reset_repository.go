package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PasswordReset is the outstanding OTP for one username. Only the bcrypt
// hash of the OTP is kept.
type PasswordReset struct {
	Username  string    `json:"username"`
	AccountID string    `json:"accountId"`
	OTPHash   string    `json:"otpHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// PasswordResetRepository manages OTP persistence. Save replaces any
// earlier OTP for the same username.
type PasswordResetRepository interface {
	Save(ctx context.Context, reset *PasswordReset) error
	Get(ctx context.Context, username string) (*PasswordReset, error)
	MarkUsed(ctx context.Context, username string) error
}

func resetKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type memoryPasswordResetRepository struct {
	mu     sync.Mutex
	resets map[string]PasswordReset
}

// NewMemoryPasswordResetRepository returns an in-memory repository.
func NewMemoryPasswordResetRepository() PasswordResetRepository {
	return &memoryPasswordResetRepository{resets: make(map[string]PasswordReset)}
}

func (r *memoryPasswordResetRepository) Save(_ context.Context, reset *PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[resetKey(reset.Username)] = *reset
	return nil
}

func (r *memoryPasswordResetRepository) Get(_ context.Context, username string) (*PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reset, ok := r.resets[resetKey(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return &reset, nil
}

func (r *memoryPasswordResetRepository) MarkUsed(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resetKey(username)
	reset, ok := r.resets[key]
	if !ok {
		return ErrNotFound
	}
	reset.Used = true
	r.resets[key] = reset
	return nil
}

type redisPasswordResetRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisPasswordResetRepository stores OTPs in Redis; entries expire with
// the OTP.
func NewRedisPasswordResetRepository(client *redis.Client, prefix string) PasswordResetRepository {
	return &redisPasswordResetRepository{client: client, prefix: prefix}
}

func (r *redisPasswordResetRepository) key(username string) string {
	return r.prefix + "otp:" + resetKey(username)
}

func (r *redisPasswordResetRepository) Save(ctx context.Context, reset *PasswordReset) error {
	payload, err := json.Marshal(reset)
	if err != nil {
		return err
	}
	ttl := time.Until(reset.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.Set(ctx, r.key(reset.Username), payload, ttl).Err()
}

func (r *redisPasswordResetRepository) Get(ctx context.Context, username string) (*PasswordReset, error) {
	raw, err := r.client.Get(ctx, r.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var reset PasswordReset
	if err := json.Unmarshal(raw, &reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// MarkUsed deletes the entry; a used OTP is indistinguishable from none.
func (r *redisPasswordResetRepository) MarkUsed(ctx context.Context, username string) error {
	return r.client.Del(ctx, r.key(username)).Err()
}

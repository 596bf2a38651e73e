package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spec-kit/ticket-client/internal/domain"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("repository: not found")

// Account is a user known to the development ticket service. ID is the
// student or employee number.
type Account struct {
	ID           string
	Username     string
	Email        string
	Kind         domain.UserKind
	FirstName    string
	LastName     string
	PasswordHash string
	// Staff marks MIS staff, who may assign and resolve any ticket.
	Staff        bool
}

// DisplayName is the name returned at login.
func (a Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// UserRepository defines access to accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type memoryUserRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryUserRepository returns a repository seeded with accounts.
func NewMemoryUserRepository(accounts ...Account) UserRepository {
	r := &memoryUserRepository{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Username, username) {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = passwordHash
	r.accounts[id] = a
	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryUsers keeps accounts in process memory for runs without Postgres.
type MemoryUsers struct {
	mu     sync.RWMutex
	byMail map[string]memoryUser
	cost   int
}

type memoryUser struct {
	id   string
	hash []byte
}

// NewMemoryUsers returns an empty account registry.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byMail: make(map[string]memoryUser), cost: bcrypt.DefaultCost}
}

// CreateUser registers a new user and returns its identity.
func (m *MemoryUsers) CreateUser(_ context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byMail[email]; ok {
		return User{}, ErrUserExists
	}
	u := memoryUser{id: uuid.NewString(), hash: hash}
	m.byMail[email] = u
	return User{ID: u.id, Email: email}, nil
}

// Authenticate validates credentials and returns the matching user.
func (m *MemoryUsers) Authenticate(_ context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m.mu.RLock()
	u, ok := m.byMail[email]
	m.mu.RUnlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return User{ID: u.id, Email: email}, nil
}

package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "idport/pkg/domain-errors"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*User)}
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "user already exists")
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
}

func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[u.ID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}

	cp := *u
	cp.CreatedAt = stored.CreatedAt
	cp.IdvAttempts = stored.IdvAttempts
	cp.UpdatedAt = time.Now()
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) IncrementIdvAttempts(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	u.IdvAttempts++
	u.UpdatedAt = time.Now()
	return u.IdvAttempts, nil
}

func (s *MemoryStore) IdvAttempts(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return u.IdvAttempts, nil
}

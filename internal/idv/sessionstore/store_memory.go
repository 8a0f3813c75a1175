package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"idport/internal/idv/models"
	dErrors "idport/pkg/domain-errors"
)

// MemoryStore is an in-process Store for development and tests. Entries
// expire lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	snap      models.SessionSnapshot
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[uuid.UUID]memoryEntry),
	}
}

func (s *MemoryStore) Save(_ context.Context, userID uuid.UUID, snap models.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = memoryEntry{snap: snap, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, userID uuid.UUID) (models.SessionSnapshot, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return models.SessionSnapshot{}, dErrors.New(dErrors.CodeNotFound, "no session in progress")
	}
	return entry.snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

package backupcode

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	codes  map[uuid.UUID][]*StoredCode
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[uuid.UUID][]*StoredCode)}
}

func (s *MemoryStore) Replace(_ context.Context, userID uuid.UUID, hashes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make([]*StoredCode, 0, len(hashes))
	for _, h := range hashes {
		s.nextID++
		set = append(set, &StoredCode{ID: s.nextID, CodeHash: h})
	}
	s.codes[userID] = set
	return nil
}

func (s *MemoryStore) ListUnused(_ context.Context, userID uuid.UUID) ([]StoredCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []StoredCode
	for _, sc := range s.codes[userID] {
		if !sc.Used {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkUsed(_ context.Context, codeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, set := range s.codes {
		for _, sc := range set {
			if sc.ID == codeID {
				sc.Used = true
				return nil
			}
		}
	}
	return nil
}

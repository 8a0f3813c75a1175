package audit

import (
	"context"
	"errors"
)

// MultiStore fans appends out to several stores, typically a queryable
// primary plus a Kafka export. Reads come from the first store.
type MultiStore struct {
	stores []Store
}

func NewMultiStore(stores ...Store) *MultiStore {
	return &MultiStore{stores: stores}
}

func (m *MultiStore) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	if len(m.stores) == 0 {
		return nil, nil
	}
	return m.stores[0].ListByUser(ctx, userID)
}

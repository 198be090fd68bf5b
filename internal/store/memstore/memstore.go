// Package memstore is the in-memory market.KV used by tests and
// single-process deployments without a database.
package memstore

import (
	"context"
	"sync"

	"pricebet/internal/market"
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key market.DataKey) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key.String()]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

// Apply lands the whole batch under one lock; a map write cannot fail, so
// the batch is trivially atomic.
func (s *Store) Apply(_ context.Context, muts []market.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range muts {
		if m.Delete {
			delete(s.data, m.Key.String())
			continue
		}
		val := make([]byte, len(m.Value))
		copy(val, m.Value)
		s.data[m.Key.String()] = val
	}
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

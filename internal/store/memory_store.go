package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local KeyValueStore for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]Item)}
}

func (s *MemoryStore) Get(_ context.Context, table, key string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyItem(row), nil
}

func (s *MemoryStore) Put(_ context.Context, table string, item Item) (Outcome, error) {
	if item.Key() == "" {
		return OutcomeNotApplied, wrap("put", table, "", errMissingKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[string]Item)
		s.tables[table] = rows
	}
	rows[item.Key()] = copyItem(item)
	return OutcomeInserted, nil
}

func (s *MemoryStore) Delete(_ context.Context, table, key string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables[table], key)
	return OutcomeDeleted, nil
}

func (s *MemoryStore) UpdateField(_ context.Context, table, key, field, value string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tables[table][key]
	if !ok {
		return OutcomeNotApplied, nil
	}
	row[field] = value
	return OutcomeUpdated, nil
}

func copyItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

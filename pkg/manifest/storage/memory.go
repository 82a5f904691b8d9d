package storage

import (
	"context"
	"sync"

	"mercator-hq/ganymede/pkg/manifest"
)

// MemoryStorage implements Storage with an in-memory slice. Intended for
// tests and single-run tooling; entries are copied on the way in and out so
// callers can never mutate stored history.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []*manifest.Entry
}

// NewMemoryStorage creates an empty in-memory manifest store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append adds an entry to the end of the manifest.
func (s *MemoryStorage) Append(ctx context.Context, entry *manifest.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *entry
	s.entries = append(s.entries, &entryCopy)
	return nil
}

// List returns entries matching the query in append order.
func (s *MemoryStorage) List(ctx context.Context, query *Query) ([]*manifest.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*manifest.Entry
	skipped := 0
	for _, entry := range s.entries {
		if !matchesQuery(entry, query) {
			continue
		}
		if query != nil && skipped < query.Offset {
			skipped++
			continue
		}
		entryCopy := *entry
		results = append(results, &entryCopy)
		if query != nil && query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of entries matching the query.
func (s *MemoryStorage) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if matchesQuery(entry, query) {
			count++
		}
	}
	return count, nil
}

// Last returns the most recently appended entry, or nil when empty.
func (s *MemoryStorage) Last(ctx context.Context) (*manifest.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	entryCopy := *s.entries[len(s.entries)-1]
	return &entryCopy, nil
}

// Close clears the store.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// matchesQuery checks an entry against query filters.
func matchesQuery(entry *manifest.Entry, query *Query) bool {
	if query == nil {
		return true
	}
	if query.UnitID != "" && entry.UnitID != query.UnitID {
		return false
	}
	if query.WeightSetID != "" && entry.WeightSetID != query.WeightSetID {
		return false
	}
	if query.VetoedOnly && entry.Veto == nil {
		return false
	}
	if query.StartTime != nil && entry.Timestamp.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && !entry.Timestamp.Before(*query.EndTime) {
		return false
	}
	return true
}

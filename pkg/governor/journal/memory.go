package journal

import (
	"context"
	"sync"
)

// MemoryJournal implements Journal with an in-memory slice. Intended for
// tests and single-run tooling.
type MemoryJournal struct {
	mu     sync.RWMutex
	events []*ClampEvent
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record appends a clamp event.
func (j *MemoryJournal) Record(ctx context.Context, event *ClampEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	eventCopy := *event
	j.events = append(j.events, &eventCopy)
	return nil
}

// List returns events matching the query, oldest first.
func (j *MemoryJournal) List(ctx context.Context, query *Query) ([]*ClampEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var results []*ClampEvent
	for _, event := range j.events {
		if !matches(event, query) {
			continue
		}
		eventCopy := *event
		results = append(results, &eventCopy)
		if query != nil && query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of events matching the query.
func (j *MemoryJournal) Count(ctx context.Context, query *Query) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var count int64
	for _, event := range j.events {
		if matches(event, query) {
			count++
		}
	}
	return count, nil
}

// Close clears the journal.
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = nil
	return nil
}

// matches checks an event against query filters.
func matches(event *ClampEvent, query *Query) bool {
	if query == nil {
		return true
	}
	if query.Stage != "" && event.Stage != query.Stage {
		return false
	}
	if query.Since != nil && event.Timestamp.Before(*query.Since) {
		return false
	}
	return true
}

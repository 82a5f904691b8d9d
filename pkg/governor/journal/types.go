package journal

import (
	"context"
	"time"
)

// ClampEvent records one bounded-multiplicative-fusion clamp: the raw
// product, the value it was clamped to, and the pipeline stage that asked
// for certification.
type ClampEvent struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	Before    float64   `json:"before"`
	After     float64   `json:"after"`
	Factors   int       `json:"factors"`
	Timestamp time.Time `json:"timestamp"`
}

// Query filters clamp events.
type Query struct {
	// Stage restricts results to one pipeline stage. Empty matches all.
	Stage string

	// Since restricts results to events at or after this time.
	Since *time.Time

	// Limit caps the number of returned events. Zero means no cap.
	Limit int
}

// Journal is the clamp-event store. Implementations must be safe for
// concurrent use.
type Journal interface {
	// Record appends a clamp event.
	Record(ctx context.Context, event *ClampEvent) error

	// List returns events matching the query, oldest first.
	List(ctx context.Context, query *Query) ([]*ClampEvent, error)

	// Count returns the number of events matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

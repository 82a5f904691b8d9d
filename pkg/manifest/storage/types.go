package storage

import (
	"context"
	"time"

	"mercator-hq/ganymede/pkg/manifest"
)

// Query defines filter parameters for listing manifest entries. Results are
// always returned in append order (oldest first); the chain verifier depends
// on that ordering.
type Query struct {
	// UnitID restricts results to one evaluated unit. Empty matches all.
	UnitID string

	// WeightSetID restricts results to decisions under one weight set.
	WeightSetID string

	// VetoedOnly restricts results to entries carrying a veto.
	VetoedOnly bool

	// StartTime/EndTime bound the entry timestamp (inclusive start,
	// exclusive end). Nil means unbounded.
	StartTime *time.Time
	EndTime   *time.Time

	// Limit caps the number of returned entries. Zero means no cap.
	Limit int

	// Offset skips that many matching entries.
	Offset int
}

// Storage is the manifest entry store. Implementations must be safe for
// concurrent use and must not expose any mutation of stored entries.
type Storage interface {
	// Append adds an entry to the end of the manifest. Appends must be
	// serialized by the caller (the recorder is the single writer).
	Append(ctx context.Context, entry *manifest.Entry) error

	// List returns entries matching the query in append order.
	List(ctx context.Context, query *Query) ([]*manifest.Entry, error)

	// Count returns the number of entries matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Last returns the most recently appended entry, or nil when the
	// manifest is empty. The recorder uses it to resume the hash chain.
	Last(ctx context.Context) (*manifest.Entry, error)

	// Close releases backend resources.
	Close() error
}

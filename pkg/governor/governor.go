package governor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/governor/journal"
)

// ProductBounds is the closed interval every certified multiplicative
// combination is clamped into. Both bounds must be strictly positive.
type ProductBounds struct {
	Min float64
	Max float64
}

// NewProductBounds validates and constructs product bounds.
func NewProductBounds(min, max float64) (ProductBounds, error) {
	if min <= 0 || max <= 0 || min > max {
		return ProductBounds{}, &InvalidProductBoundsError{Min: min, Max: max}
	}
	return ProductBounds{Min: min, Max: max}, nil
}

// Governor runs the structural load-time gates and certifies bounded
// multiplicative fusion steps. It is the single origin of cycle and
// inversion errors; no other component re-derives those invariants.
type Governor struct {
	bounds  ProductBounds
	journal journal.Journal
	logger  *slog.Logger
}

// New creates a governor. The journal may be nil, in which case clamp events
// are logged but not persisted.
func New(bounds ProductBounds, j journal.Journal) (*Governor, error) {
	validated, err := NewProductBounds(bounds.Min, bounds.Max)
	if err != nil {
		return nil, err
	}
	return &Governor{
		bounds:  validated,
		journal: j,
		logger:  slog.Default().With("component", "governor"),
	}, nil
}

// Bounds returns the configured product bounds.
func (g *Governor) Bounds() ProductBounds { return g.bounds }

// Govern runs both structural checks against the dependency graph. It is
// called once at calibration-load time; a non-nil error must prevent the
// process from entering a ready state.
//
// The cycle gate runs first: a graph that cannot be ordered is reported via
// CyclicDependencyError naming the offending cycle. The inversion gate then
// reports the first edge that lets a higher tier feed a lower tier's
// computation via LevelInversionError.
func (g *Governor) Govern(graph *DependencyGraph) error {
	order, err := graph.TopologicalOrder()
	if err != nil {
		return err
	}

	if inverted := graph.Inversions(); len(inverted) > 0 {
		e := inverted[0]
		fromTier, _ := graph.Tier(e.From)
		toTier, _ := graph.Tier(e.To)
		return &LevelInversionError{From: e.From, FromTier: fromTier, To: e.To, ToTier: toTier}
	}

	g.logger.Info("dependency graph validated",
		"nodes", len(order),
		"edges", len(graph.Edges()),
	)
	return nil
}

// CertifyProduct multiplies the factors and clamps the result into the
// configured bounds. Clamping is recorded to the journal and logged with
// before/after values; it is never an error. Stage names the pipeline step
// being certified, for the audit trail.
func (g *Governor) CertifyProduct(ctx context.Context, stage string, factors ...float64) float64 {
	product := 1.0
	for _, f := range factors {
		product *= f
	}

	clamped := product
	switch {
	case product < g.bounds.Min:
		clamped = g.bounds.Min
	case product > g.bounds.Max:
		clamped = g.bounds.Max
	}

	if clamped != product {
		event := &journal.ClampEvent{
			ID:        uuid.New().String(),
			Stage:     stage,
			Before:    product,
			After:     clamped,
			Factors:   len(factors),
			Timestamp: time.Now().UTC(),
		}

		g.logger.Warn("bounded multiplicative fusion clamped",
			"stage", stage,
			"before", product,
			"after", clamped,
			"bounds_min", g.bounds.Min,
			"bounds_max", g.bounds.Max,
		)

		if g.journal != nil {
			if err := g.journal.Record(ctx, event); err != nil {
				g.logger.Error("failed to journal clamp event",
					"stage", stage,
					"error", err,
				)
			}
		}
	}

	return clamped
}

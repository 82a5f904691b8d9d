package governor

import (
	"fmt"
	"strings"

	"mercator-hq/ganymede/pkg/calibration"
)

// CyclicDependencyError reports a dependency graph that cannot be
// topologically ordered. Cycle holds one concrete offending cycle, closed
// (first node repeated last) for readability.
type CyclicDependencyError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency graph contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// LevelInversionError reports an edge that feeds a higher-tier value into a
// lower tier's computation, e.g. an audit-tier output consumed as if it were
// raw empirical input.
type LevelInversionError struct {
	From     string
	FromTier calibration.Tier
	To       string
	ToTier   calibration.Tier
}

// Error implements the error interface.
func (e *LevelInversionError) Error() string {
	return fmt.Sprintf("level inversion: %s (%s) feeds %s (%s); values may only flow toward higher tiers",
		e.From, e.FromTier, e.To, e.ToTier)
}

// UnknownNodeError reports an edge endpoint that was never declared as a
// node.
type UnknownNodeError struct {
	Node string
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("dependency edge references undeclared node %q", e.Node)
}

// InvalidProductBoundsError reports product bounds that are not strictly
// positive or are inverted.
type InvalidProductBoundsError struct {
	Min float64
	Max float64
}

// Error implements the error interface.
func (e *InvalidProductBoundsError) Error() string {
	return fmt.Sprintf("product bounds [%g, %g] must be strictly positive with min <= max", e.Min, e.Max)
}

package calibration

import (
	"fmt"
	"strings"
)

// InvalidIntervalError reports a closed interval whose bounds are inverted.
type InvalidIntervalError struct {
	Lower float64
	Upper float64
}

// Error implements the error interface.
func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval: lower bound %g exceeds upper bound %g", e.Lower, e.Upper)
}

// OutOfBoundsError reports a bounded parameter whose value violates its
// interval at construction time. Values are never silently clamped.
type OutOfBoundsError struct {
	Name   string
	Value  float64
	Bounds ClosedInterval
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("parameter %q: value %g outside bounds %s", e.Name, e.Value, e.Bounds)
}

// IncompleteProvenanceError reports a calibration layer constructed without a
// rationale or without evidence. Every calibrated number must be traceable to
// a reviewable source.
type IncompleteProvenanceError struct {
	LayerID string
	Missing string // "rationale" or "evidence"
}

// Error implements the error interface.
func (e *IncompleteProvenanceError) Error() string {
	return fmt.Sprintf("calibration layer %q: missing %s", e.LayerID, e.Missing)
}

// InvalidLocatorError reports an evidence reference whose locator does not
// start with an accepted namespace prefix.
type InvalidLocatorError struct {
	Locator string
}

// Error implements the error interface.
func (e *InvalidLocatorError) Error() string {
	return fmt.Sprintf("evidence locator %q must start with one of: %s",
		e.Locator, strings.Join(AcceptedLocatorPrefixes[:], ", "))
}

// UnknownLayerError reports a token that does not name one of the eight
// layers.
type UnknownLayerError struct {
	Token string
}

// Error implements the error interface.
func (e *UnknownLayerError) Error() string {
	return fmt.Sprintf("unknown layer %q (expected one of %s)", e.Token, layerTokenList())
}

func layerTokenList() string {
	tokens := make([]string, 0, LayerCount)
	for _, id := range Layers {
		tokens = append(tokens, string(id))
	}
	return strings.Join(tokens, ", ")
}

package veto

import "fmt"

// InvalidSpecificityError reports a veto result whose specificity is NaN.
// NaN compares unequal to everything, so such a result has no position in
// the specificity ordering and the cascade rejects it outright.
type InvalidSpecificityError struct {
	LayerID string
}

// Error implements the error interface.
func (e *InvalidSpecificityError) Error() string {
	return fmt.Sprintf("veto result for layer %q: specificity is NaN", e.LayerID)
}

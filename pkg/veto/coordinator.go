package veto

import (
	"math"
	"sort"

	"mercator-hq/ganymede/pkg/calibration"
)

// Result is one layer's veto verdict for an evaluated unit.
type Result struct {
	LayerID     calibration.LayerID `json:"layer_id"`
	Triggered   bool                `json:"triggered"`
	Specificity float64             `json:"specificity_score"`
	Reason      string              `json:"reason"`
}

// Coordinator runs the veto cascade. It is stateless and safe for concurrent
// use.
type Coordinator struct{}

// NewCoordinator creates a veto coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Cascade selects the winning veto, or nil when no result triggered.
//
// A result with NaN specificity is rejected with InvalidSpecificityError:
// NaN has no position in the ordering and would silently degrade the winner
// to caller order.
//
// The input slice is never mutated: results are copied, stably sorted by
// specificity descending with ties broken by the canonical layer priority
// order, and the first triggered result wins. Sorting an already-sorted
// sequence selects the same veto (the cascade is idempotent).
func (c *Coordinator) Cascade(results []Result) (*Result, error) {
	if len(results) == 0 {
		return nil, nil
	}
	for _, r := range results {
		if math.IsNaN(r.Specificity) {
			return nil, &InvalidSpecificityError{LayerID: string(r.LayerID)}
		}
	}

	ordered := append([]Result(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Specificity != ordered[j].Specificity {
			return ordered[i].Specificity > ordered[j].Specificity
		}
		return layerPriority(ordered[i].LayerID) < layerPriority(ordered[j].LayerID)
	})

	for _, r := range ordered {
		if r.Triggered {
			winner := r
			return &winner, nil
		}
	}
	return nil, nil
}

// layerPriority maps a layer to its fixed tie-break rank; earlier canonical
// layers outrank later ones. Unknown layers sort last.
func layerPriority(id calibration.LayerID) int {
	if idx := calibration.LayerIndex(id); idx >= 0 {
		return idx
	}
	return calibration.LayerCount
}

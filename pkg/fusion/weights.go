package fusion

import (
	"math"
	"sort"

	"mercator-hq/ganymede/pkg/calibration"
)

// NormalizationTolerance is the permitted floating-point slack around the
// required total weight mass of 1.0.
const NormalizationTolerance = 1e-6

// WeightSet is the immutable per-role fusion weight table: one non-negative
// linear weight per layer plus non-negative weights for a small set of
// unordered interaction pairs. Total mass must be exactly 1 within
// NormalizationTolerance; this is checked once at construction, never per
// evaluation.
type WeightSet struct {
	id           string
	role         Role
	linear       [calibration.LayerCount]float64
	interactions map[LayerPair]float64
	pairs        []LayerPair // canonical iteration order
}

// NewWeightSet constructs and validates a weight set. The id ties the set to
// its calibration cohort (e.g. "EXECUTOR/2026.08") and is recorded in every
// manifest entry produced under it.
//
// Construction fails with NegativeWeightError, MissingLayerError,
// InvalidPairError, or WeightNormalizationError. All of these are fatal
// calibration-load errors.
func NewWeightSet(id string, role Role, linear map[calibration.LayerID]float64, interactions map[LayerPair]float64) (*WeightSet, error) {
	ws := &WeightSet{
		id:           id,
		role:         role,
		interactions: make(map[LayerPair]float64, len(interactions)),
	}

	sum := 0.0
	for _, layer := range calibration.Layers {
		w, ok := linear[layer]
		if !ok {
			return nil, &MissingLayerError{Layer: layer}
		}
		if w < 0 {
			return nil, &NegativeWeightError{Role: role, Entry: string(layer), Weight: w}
		}
		ws.linear[calibration.LayerIndex(layer)] = w
		sum += w
	}
	if len(linear) != calibration.LayerCount {
		// All eight known layers were found above, so an extra entry means an
		// unknown token slipped in.
		for layer := range linear {
			if calibration.LayerIndex(layer) < 0 {
				return nil, &calibration.UnknownLayerError{Token: string(layer)}
			}
		}
	}

	for pair, w := range interactions {
		canonical, err := NewLayerPair(pair.First, pair.Second)
		if err != nil {
			return nil, &InvalidPairError{Role: role, Pair: pair.String(), Reason: err.Error()}
		}
		if w < 0 {
			return nil, &NegativeWeightError{Role: role, Entry: canonical.String(), Weight: w}
		}
		if _, dup := ws.interactions[canonical]; dup {
			return nil, &InvalidPairError{Role: role, Pair: canonical.String(), Reason: "declared twice"}
		}
		ws.interactions[canonical] = w
		ws.pairs = append(ws.pairs, canonical)
		sum += w
	}
	sort.Slice(ws.pairs, func(i, j int) bool {
		a, b := ws.pairs[i], ws.pairs[j]
		if a.First != b.First {
			return calibration.LayerIndex(a.First) < calibration.LayerIndex(b.First)
		}
		return calibration.LayerIndex(a.Second) < calibration.LayerIndex(b.Second)
	})

	if math.Abs(sum-1.0) > NormalizationTolerance {
		return nil, &WeightNormalizationError{Role: role, Sum: sum}
	}
	return ws, nil
}

// ID returns the weight-set identifier recorded in manifest entries.
func (ws *WeightSet) ID() string { return ws.id }

// Role returns the role this weight set applies to.
func (ws *WeightSet) Role() Role { return ws.role }

// LinearWeight returns the linear weight for a layer.
func (ws *WeightSet) LinearWeight(layer calibration.LayerID) float64 {
	idx := calibration.LayerIndex(layer)
	if idx < 0 {
		return 0
	}
	return ws.linear[idx]
}

// InteractionPairs returns the interaction pairs in canonical order.
func (ws *WeightSet) InteractionPairs() []LayerPair {
	return append([]LayerPair(nil), ws.pairs...)
}

// InteractionWeight returns the weight for an unordered pair, 0 when the
// pair carries no interaction.
func (ws *WeightSet) InteractionWeight(pair LayerPair) float64 {
	canonical, err := NewLayerPair(pair.First, pair.Second)
	if err != nil {
		return 0
	}
	return ws.interactions[canonical]
}

package fusion

import (
	"fmt"

	"mercator-hq/ganymede/pkg/calibration"
)

// Evaluate computes the Choquet 2-additive fusion of a score vector under a
// weight set:
//
//	Σ linear[l]·score[l] + Σ interaction[(l,k)]·min(score[l], score[k])
//
// The result lies in [0,1] for any valid input: every term is a non-negative
// weight times a value in [0,1], and the weights sum to 1, so the all-ones
// vector attains exactly 1. The result is monotone in every layer score
// because min is non-decreasing in each argument.
//
// Evaluate is pure and safe for unbounded concurrent use. Invalid scores are
// rejected, never clamped; intermediate values are full double precision and
// are never rounded before composition.
func Evaluate(scores ScoreVector, weights *WeightSet) (float64, error) {
	if weights == nil {
		return 0, fmt.Errorf("weight set is required")
	}
	if err := scores.Validate(); err != nil {
		return 0, err
	}

	result := 0.0
	for _, layer := range calibration.Layers {
		result += weights.LinearWeight(layer) * scores.Score(layer)
	}
	for _, pair := range weights.pairs {
		result += weights.interactions[pair] * min(scores.Score(pair.First), scores.Score(pair.Second))
	}
	return result, nil
}

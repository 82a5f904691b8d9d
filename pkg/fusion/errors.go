package fusion

import (
	"fmt"

	"mercator-hq/ganymede/pkg/calibration"
)

// WeightNormalizationError reports a weight set whose total mass is not 1
// within NormalizationTolerance. This is a fatal calibration-load error.
type WeightNormalizationError struct {
	Role Role
	Sum  float64
}

// Error implements the error interface.
func (e *WeightNormalizationError) Error() string {
	return fmt.Sprintf("weight set for role %s: weights sum to %.9f, expected 1.0 ± %g",
		e.Role, e.Sum, NormalizationTolerance)
}

// NegativeWeightError reports a negative linear or interaction weight.
type NegativeWeightError struct {
	Role   Role
	Entry  string // layer token or pair rendering
	Weight float64
}

// Error implements the error interface.
func (e *NegativeWeightError) Error() string {
	return fmt.Sprintf("weight set for role %s: entry %s has negative weight %g", e.Role, e.Entry, e.Weight)
}

// MissingLayerError reports a score vector or weight table lacking one of the
// eight required layers. Per-call rejections name the offending field.
type MissingLayerError struct {
	Layer calibration.LayerID
}

// Error implements the error interface.
func (e *MissingLayerError) Error() string {
	return fmt.Sprintf("missing required layer %s", e.Layer)
}

// ScoreRangeError reports a layer score outside [0,1]. Scores are rejected,
// never clamped.
type ScoreRangeError struct {
	Layer calibration.LayerID
	Value float64
}

// Error implements the error interface.
func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("layer %s: score %g outside [0, 1]", e.Layer, e.Value)
}

// UnknownRoleError reports a role token with no registered weight set.
type UnknownRoleError struct {
	Token string
}

// Error implements the error interface.
func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Token)
}

// InvalidPairError reports a malformed interaction pair (unknown or
// duplicate layer, or a pair declared twice).
type InvalidPairError struct {
	Role   Role
	Pair   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("weight set for role %s: interaction pair %s: %s", e.Role, e.Pair, e.Reason)
}

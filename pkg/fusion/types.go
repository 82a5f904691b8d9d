package fusion

import (
	"fmt"
	"strings"

	"mercator-hq/ganymede/pkg/calibration"
)

// Role is the closed enumeration of evaluation roles. Each role carries its
// own weight set; dispatch happens on the enum value, never on raw strings.
type Role int

const (
	// RoleExecutor evaluates single-executor output.
	RoleExecutor Role = iota
	// RoleCluster evaluates aggregated cluster output.
	RoleCluster
	// RolePlanner evaluates planning output.
	RolePlanner
	// RoleAuditor evaluates audit-pass output.
	RoleAuditor
)

// roles lists every member of the closed role set.
var roles = [...]Role{RoleExecutor, RoleCluster, RolePlanner, RoleAuditor}

// String returns the configuration token for the role.
func (r Role) String() string {
	switch r {
	case RoleExecutor:
		return "EXECUTOR"
	case RoleCluster:
		return "CLUSTER"
	case RolePlanner:
		return "PLANNER"
	case RoleAuditor:
		return "AUDITOR"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a role token into a Role. Unknown tokens are a per-call
// rejection, not a fallback to any default role.
func ParseRole(token string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	for _, r := range roles {
		if r.String() == normalized {
			return r, nil
		}
	}
	return 0, &UnknownRoleError{Token: token}
}

// ScoreVector is the closed record of the eight layer scores for one
// evaluated unit. Every field is a score in [0,1]; there is deliberately no
// map form at this level, so a vector can neither miss a layer nor carry an
// extra one.
type ScoreVector struct {
	Behavior  float64 // @b
	Chain     float64 // @chain
	Question  float64 // @q
	Data      float64 // @d
	Precision float64 // @p
	Coverage  float64 // @C
	Units     float64 // @u
	Method    float64 // @m
}

// ParseScoreVector validates a raw token→score mapping at the input boundary
// and converts it into a typed vector. All eight layers must be present, no
// extra keys are tolerated, and every value must lie in [0,1].
func ParseScoreVector(raw map[string]float64) (ScoreVector, error) {
	var v ScoreVector

	for key := range raw {
		if !calibration.IsValidLayer(key) {
			return ScoreVector{}, &calibration.UnknownLayerError{Token: key}
		}
	}
	for _, id := range calibration.Layers {
		score, ok := raw[string(id)]
		if !ok {
			return ScoreVector{}, &MissingLayerError{Layer: id}
		}
		if !calibration.UnitInterval.Contains(score) {
			return ScoreVector{}, &ScoreRangeError{Layer: id, Value: score}
		}
		v.set(id, score)
	}
	return v, nil
}

// Score returns the score for the given layer.
func (v ScoreVector) Score(id calibration.LayerID) float64 {
	switch id {
	case calibration.LayerBehavior:
		return v.Behavior
	case calibration.LayerChain:
		return v.Chain
	case calibration.LayerQuestion:
		return v.Question
	case calibration.LayerData:
		return v.Data
	case calibration.LayerPrecision:
		return v.Precision
	case calibration.LayerCoverage:
		return v.Coverage
	case calibration.LayerUnits:
		return v.Units
	case calibration.LayerMethod:
		return v.Method
	default:
		return 0
	}
}

func (v *ScoreVector) set(id calibration.LayerID, score float64) {
	switch id {
	case calibration.LayerBehavior:
		v.Behavior = score
	case calibration.LayerChain:
		v.Chain = score
	case calibration.LayerQuestion:
		v.Question = score
	case calibration.LayerData:
		v.Data = score
	case calibration.LayerPrecision:
		v.Precision = score
	case calibration.LayerCoverage:
		v.Coverage = score
	case calibration.LayerUnits:
		v.Units = score
	case calibration.LayerMethod:
		v.Method = score
	}
}

// Validate checks that every score lies in [0,1].
func (v ScoreVector) Validate() error {
	for _, id := range calibration.Layers {
		if s := v.Score(id); !calibration.UnitInterval.Contains(s) {
			return &ScoreRangeError{Layer: id, Value: s}
		}
	}
	return nil
}

// ToMap renders the vector as a token→score mapping, for canonical hashing
// and display. Iteration consumers must sort keys themselves.
func (v ScoreVector) ToMap() map[string]float64 {
	m := make(map[string]float64, calibration.LayerCount)
	for _, id := range calibration.Layers {
		m[string(id)] = v.Score(id)
	}
	return m
}

// LayerPair is an unordered pair of distinct layers carrying an interaction
// weight. Pairs are stored in canonical layer order so (a,b) and (b,a) are
// the same pair.
type LayerPair struct {
	First  calibration.LayerID
	Second calibration.LayerID
}

// NewLayerPair canonicalizes and validates an unordered pair.
func NewLayerPair(a, b calibration.LayerID) (LayerPair, error) {
	ia, ib := calibration.LayerIndex(a), calibration.LayerIndex(b)
	if ia < 0 {
		return LayerPair{}, &calibration.UnknownLayerError{Token: string(a)}
	}
	if ib < 0 {
		return LayerPair{}, &calibration.UnknownLayerError{Token: string(b)}
	}
	if ia == ib {
		return LayerPair{}, fmt.Errorf("interaction pair requires two distinct layers, got %s twice", a)
	}
	if ia > ib {
		a, b = b, a
	}
	return LayerPair{First: a, Second: b}, nil
}

// String renders the pair as "(@u, @chain)" in canonical order.
func (p LayerPair) String() string {
	return fmt.Sprintf("(%s, %s)", p.First, p.Second)
}

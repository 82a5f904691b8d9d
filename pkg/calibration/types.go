package calibration

import (
	"fmt"
	"strings"
)

// LayerID identifies one of the eight fixed quality layers contributing to a
// fused score. The token form (e.g. "@chain") is the wire and configuration
// representation; it is stable across cohorts.
type LayerID string

const (
	// LayerBehavior ("@b") scores observed behavioral correctness.
	LayerBehavior LayerID = "@b"
	// LayerChain ("@chain") scores reasoning-chain integrity.
	LayerChain LayerID = "@chain"
	// LayerQuestion ("@q") scores question/contract coverage.
	LayerQuestion LayerID = "@q"
	// LayerData ("@d") scores data grounding.
	LayerData LayerID = "@d"
	// LayerPrecision ("@p") scores precision of claims.
	LayerPrecision LayerID = "@p"
	// LayerCoverage ("@C") scores breadth of coverage.
	LayerCoverage LayerID = "@C"
	// LayerUnits ("@u") scores unit-level verification.
	LayerUnits LayerID = "@u"
	// LayerMethod ("@m") scores methodological soundness.
	LayerMethod LayerID = "@m"
)

// Layers lists all eight layer identifiers in canonical order. The order is
// fixed: it defines the deterministic iteration order used by fusion,
// canonical hashing, and the veto tie-break priority (earlier is higher
// priority).
var Layers = [8]LayerID{
	LayerBehavior,
	LayerChain,
	LayerQuestion,
	LayerData,
	LayerPrecision,
	LayerCoverage,
	LayerUnits,
	LayerMethod,
}

// LayerCount is the size of the closed layer set.
const LayerCount = len(Layers)

// IsValidLayer reports whether token names one of the eight layers.
func IsValidLayer(token string) bool {
	for _, id := range Layers {
		if string(id) == token {
			return true
		}
	}
	return false
}

// LayerIndex returns the canonical position of id, or -1 for unknown
// identifiers.
func LayerIndex(id LayerID) int {
	for i, known := range Layers {
		if known == id {
			return i
		}
	}
	return -1
}

// Tier is the epistemic tier of a node in the dependency graph. Tiers are
// totally ordered: empirical < inferential < audit. A value may only flow
// from a lower or equal tier into a higher tier's computation; the reverse
// direction is a level inversion and is rejected by the governor.
type Tier int

const (
	// TierEmpirical holds raw, directly measured values.
	TierEmpirical Tier = iota
	// TierInferential holds values derived from empirical inputs.
	TierInferential
	// TierAudit holds values that judge or certify inferential outputs.
	TierAudit
)

// String returns the configuration token for the tier.
func (t Tier) String() string {
	switch t {
	case TierEmpirical:
		return "empirical"
	case TierInferential:
		return "inferential"
	case TierAudit:
		return "audit"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a configuration token into a Tier.
func ParseTier(token string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "empirical":
		return TierEmpirical, nil
	case "inferential":
		return TierInferential, nil
	case "audit":
		return TierAudit, nil
	default:
		return 0, fmt.Errorf("unknown tier %q (expected empirical, inferential, or audit)", token)
	}
}

// ClosedInterval is a closed interval [Lower, Upper] on the real line.
type ClosedInterval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// NewClosedInterval constructs a closed interval, rejecting inverted bounds.
func NewClosedInterval(lower, upper float64) (ClosedInterval, error) {
	if lower > upper {
		return ClosedInterval{}, &InvalidIntervalError{Lower: lower, Upper: upper}
	}
	return ClosedInterval{Lower: lower, Upper: upper}, nil
}

// Contains reports whether v lies within the interval, endpoints included.
func (i ClosedInterval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// String formats the interval in standard mathematical notation.
func (i ClosedInterval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lower, i.Upper)
}

// UnitInterval is the closed interval [0, 1] that every layer score and every
// fused score must satisfy.
var UnitInterval = ClosedInterval{Lower: 0, Upper: 1}

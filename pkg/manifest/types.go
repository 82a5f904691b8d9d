package manifest

import (
	"time"

	"mercator-hq/ganymede/pkg/veto"
)

// Entry is one immutable record in the calibration manifest: the full
// decision for one evaluated unit, hashed and chained for audit.
type Entry struct {
	// ID is the entry's UUID.
	ID string `json:"id"`

	// UnitID identifies the evaluated unit.
	UnitID string `json:"unit_id"`

	// InputsHash is the SHA-256 digest (hex) of the canonical rendering of
	// the decision inputs.
	InputsHash string `json:"inputs_hash"`

	// WeightSetID names the weight set the decision was made under.
	WeightSetID string `json:"weight_set_id"`

	// Score is the fused score. Nil when a veto short-circuited fusion.
	Score *float64 `json:"score,omitempty"`

	// Veto is the winning veto, when one overrode fusion.
	Veto *veto.Result `json:"veto,omitempty"`

	// Timestamp is the decision time in UTC.
	Timestamp time.Time `json:"timestamp"`

	// PrevHash is the EntryHash of the preceding manifest entry, or
	// GenesisHash for the first entry.
	PrevHash string `json:"prev_hash"`

	// EntryHash is the SHA-256 digest (hex) of this entry's canonical
	// rendering (all audited fields; excludes the hash itself and the
	// signature).
	EntryHash string `json:"entry_hash"`

	// Signature is the optional detached signature over the canonical
	// rendering plus EntryHash, in "<scheme>:<hex>" form.
	Signature string `json:"signature,omitempty"`
}

// GenesisHash is the PrevHash of the first entry in a manifest chain.
const GenesisHash = "genesis"

// EntryInputs are the raw decision inputs recorded into a manifest entry.
// They are canonicalized and hashed, never stored verbatim.
type EntryInputs struct {
	// UnitID identifies the evaluated unit.
	UnitID string

	// Role is the role token the unit was evaluated under.
	Role string

	// CohortVersion is the calibration cohort the decision was made with.
	CohortVersion string

	// WeightSetID names the applied weight set.
	WeightSetID string

	// Scores is the full layer score vector, keyed by layer token.
	Scores map[string]float64

	// Vetoes are all veto results supplied for the unit, in the order
	// received. Ordering is part of the audited input.
	Vetoes []veto.Result
}

// canonicalValue renders the inputs as a canonical-encoder value.
func (in *EntryInputs) canonicalValue() map[string]any {
	scores := make(map[string]any, len(in.Scores))
	for token, score := range in.Scores {
		scores[token] = score
	}

	vetoes := make([]any, 0, len(in.Vetoes))
	for _, v := range in.Vetoes {
		vetoes = append(vetoes, map[string]any{
			"layer_id":          string(v.LayerID),
			"triggered":         v.Triggered,
			"specificity_score": v.Specificity,
			"reason":            v.Reason,
		})
	}

	return map[string]any{
		"unit_id":        in.UnitID,
		"role":           in.Role,
		"cohort_version": in.CohortVersion,
		"weight_set_id":  in.WeightSetID,
		"scores":         scores,
		"vetoes":         vetoes,
	}
}

// canonicalValue renders the entry's audited fields as a canonical-encoder
// value. EntryHash and Signature are excluded: the hash covers this
// rendering, and the signature covers the rendering plus the hash.
func (e *Entry) canonicalValue() map[string]any {
	m := map[string]any{
		"id":            e.ID,
		"unit_id":       e.UnitID,
		"inputs_hash":   e.InputsHash,
		"weight_set_id": e.WeightSetID,
		"timestamp":     e.Timestamp.UTC().Format(time.RFC3339Nano),
		"prev_hash":     e.PrevHash,
	}
	if e.Score != nil {
		m["score"] = *e.Score
	}
	if e.Veto != nil {
		m["veto"] = map[string]any{
			"layer_id":          string(e.Veto.LayerID),
			"triggered":         e.Veto.Triggered,
			"specificity_score": e.Veto.Specificity,
			"reason":            e.Veto.Reason,
		}
	}
	return m
}

// Package fusion implements the Choquet 2-additive fusion of layer scores.
//
// A ScoreVector carries exactly one score in [0,1] per quality layer; a
// WeightSet carries the per-role linear weights plus a small set of pairwise
// interaction weights, normalized so total mass is exactly 1. Evaluate
// combines them:
//
//	result = Σ linear[l]·score[l] + Σ interaction[(l,k)]·min(score[l], score[k])
//
// With normalized weights the result is guaranteed to stay in [0,1], is
// monotone in every layer score, and expresses a weakest-link effect: an
// interaction pair contributes nothing when either member scores zero.
//
// Evaluation is a pure function over immutable inputs. Weight sets are
// validated once at construction (WeightNormalizationError on bad mass);
// score vectors are validated at the call boundary and rejected, never
// clamped.
package fusion

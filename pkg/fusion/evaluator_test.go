package fusion

import (
	"errors"
	"math"
	"testing"

	"mercator-hq/ganymede/pkg/calibration"
)

// executorLinear is the reference EXECUTOR linear weight table.
func executorLinear() map[calibration.LayerID]float64 {
	return map[calibration.LayerID]float64{
		calibration.LayerBehavior:  0.17,
		calibration.LayerChain:     0.13,
		calibration.LayerQuestion:  0.08,
		calibration.LayerData:      0.07,
		calibration.LayerPrecision: 0.06,
		calibration.LayerCoverage:  0.08,
		calibration.LayerUnits:     0.04,
		calibration.LayerMethod:    0.04,
	}
}

// executorInteractions is the reference EXECUTOR interaction table.
func executorInteractions(t *testing.T) map[LayerPair]float64 {
	t.Helper()

	pairs := map[LayerPair]float64{}
	for _, entry := range []struct {
		a, b   calibration.LayerID
		weight float64
	}{
		{calibration.LayerUnits, calibration.LayerChain, 0.13},
		{calibration.LayerChain, calibration.LayerCoverage, 0.10},
		{calibration.LayerQuestion, calibration.LayerData, 0.10},
	} {
		pair, err := NewLayerPair(entry.a, entry.b)
		if err != nil {
			t.Fatalf("NewLayerPair(%s, %s) failed: %v", entry.a, entry.b, err)
		}
		pairs[pair] = entry.weight
	}
	return pairs
}

// executorWeights constructs the reference EXECUTOR weight set.
func executorWeights(t *testing.T) *WeightSet {
	t.Helper()

	ws, err := NewWeightSet("EXECUTOR/test", RoleExecutor, executorLinear(), executorInteractions(t))
	if err != nil {
		t.Fatalf("NewWeightSet() failed: %v", err)
	}
	return ws
}

// referenceScores is the score vector used by the end-to-end scenarios.
func referenceScores() ScoreVector {
	return ScoreVector{
		Behavior:  0.88,
		Chain:     1.0,
		Question:  0.91,
		Data:      0.95,
		Precision: 0.83,
		Coverage:  0.94,
		Units:     0.76,
		Method:    0.72,
	}
}

// naiveEvaluate recomputes the fusion formula independently of the
// production field/pair bookkeeping, as a cross-check oracle.
func naiveEvaluate(scores ScoreVector, linear map[calibration.LayerID]float64, inter map[LayerPair]float64) float64 {
	sum := 0.0
	for layer, w := range linear {
		sum += w * scores.Score(layer)
	}
	for pair, w := range inter {
		sum += w * math.Min(scores.Score(pair.First), scores.Score(pair.Second))
	}
	return sum
}

func TestEvaluate_ReferenceScenarios(t *testing.T) {
	ws := executorWeights(t)

	tests := []struct {
		name   string
		mutate func(*ScoreVector)
		want   float64
	}{
		// Linear part 0.6031 + interactions 0.0988 + 0.094 + 0.091.
		{"baseline", func(*ScoreVector) {}, 0.8869},
		// Dropping @u to 0.40 costs 0.04*0.36 linearly and 0.13*0.36 in the
		// (@u, @chain) interaction: the weakest-link penalty.
		{"units drop", func(v *ScoreVector) { v.Units = 0.40 }, 0.8257},
		// Zeroing @chain removes its linear mass and silences both
		// interaction terms that touch it.
		{"chain collapse", func(v *ScoreVector) { v.Chain = 0.0 }, 0.5641},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := referenceScores()
			tt.mutate(&scores)

			got, err := Evaluate(scores, ws)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate() = %.10f, want %.10f", got, tt.want)
			}

			oracle := naiveEvaluate(scores, executorLinear(), executorInteractions(t))
			if math.Abs(got-oracle) > 1e-12 {
				t.Errorf("Evaluate() = %.12f disagrees with independent oracle %.12f", got, oracle)
			}
		})
	}
}

func TestEvaluate_Boundedness(t *testing.T) {
	ws := executorWeights(t)

	vectors := []ScoreVector{
		{}, // all zeros
		{Behavior: 1, Chain: 1, Question: 1, Data: 1, Precision: 1, Coverage: 1, Units: 1, Method: 1},
		referenceScores(),
		{Behavior: 0.5, Chain: 0.01, Question: 0.99, Data: 0.33, Precision: 0.66, Coverage: 0.1, Units: 1, Method: 0},
	}

	for i, scores := range vectors {
		got, err := Evaluate(scores, ws)
		if err != nil {
			t.Fatalf("Evaluate(vector %d) failed: %v", i, err)
		}
		if got < 0 || got > 1 {
			t.Errorf("Evaluate(vector %d) = %g, outside [0,1]", i, got)
		}
	}

	// The all-ones vector attains exactly the total weight mass, which is 1.
	ones := ScoreVector{Behavior: 1, Chain: 1, Question: 1, Data: 1, Precision: 1, Coverage: 1, Units: 1, Method: 1}
	got, err := Evaluate(ones, ws)
	if err != nil {
		t.Fatalf("Evaluate(ones) failed: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Evaluate(ones) = %.12f, want exactly 1", got)
	}
}

func TestEvaluate_Monotonicity(t *testing.T) {
	ws := executorWeights(t)
	base := referenceScores()
	base.Chain = 0.5
	base.Units = 0.2

	baseline, err := Evaluate(base, ws)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	// Raising any single layer must never decrease the result.
	for _, layer := range calibration.Layers {
		raised := base
		raised.set(layer, math.Min(1.0, base.Score(layer)+0.3))

		got, err := Evaluate(raised, ws)
		if err != nil {
			t.Fatalf("Evaluate(raised %s) failed: %v", layer, err)
		}
		if got < baseline {
			t.Errorf("Raising %s decreased the result: %.12f < %.12f", layer, got, baseline)
		}
	}
}

func TestEvaluate_WeakestLink(t *testing.T) {
	ws := executorWeights(t)

	// With @u at zero, the (@u, @chain) interaction must contribute nothing
	// regardless of @chain.
	scores := referenceScores()
	scores.Units = 0.0

	lowChain := scores
	lowChain.Chain = 0.5
	highChain := scores
	highChain.Chain = 1.0

	low, err := Evaluate(lowChain, ws)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	high, err := Evaluate(highChain, ws)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	// The delta must come only from @chain's linear weight and the
	// (@chain, @C) interaction; the (@u, @chain) term stays pinned at 0.
	wantDelta := 0.13*0.5 + 0.10*(math.Min(1.0, 0.94)-math.Min(0.5, 0.94))
	if math.Abs((high-low)-wantDelta) > 1e-12 {
		t.Errorf("Delta %g, want %g: (@u, @chain) term leaked past a zero member", high-low, wantDelta)
	}
}

func TestEvaluate_RejectsInvalidScores(t *testing.T) {
	ws := executorWeights(t)

	bad := referenceScores()
	bad.Data = 1.5

	_, err := Evaluate(bad, ws)
	if err == nil {
		t.Fatal("Expected rejection of out-of-range score")
	}

	var rng *ScoreRangeError
	if !errors.As(err, &rng) {
		t.Fatalf("Expected *ScoreRangeError, got %T: %v", err, err)
	}
	if rng.Layer != calibration.LayerData {
		t.Errorf("Error should name the offending layer @d, got %s", rng.Layer)
	}
}

func TestParseScoreVector(t *testing.T) {
	valid := map[string]float64{
		"@b": 0.88, "@chain": 1.0, "@q": 0.91, "@d": 0.95,
		"@p": 0.83, "@C": 0.94, "@u": 0.76, "@m": 0.72,
	}

	t.Run("valid", func(t *testing.T) {
		v, err := ParseScoreVector(valid)
		if err != nil {
			t.Fatalf("ParseScoreVector() failed: %v", err)
		}
		if v != referenceScores() {
			t.Errorf("ParseScoreVector() = %+v, want %+v", v, referenceScores())
		}
	})

	t.Run("missing layer", func(t *testing.T) {
		m := map[string]float64{}
		for k, s := range valid {
			m[k] = s
		}
		delete(m, "@p")

		_, err := ParseScoreVector(m)
		var missing *MissingLayerError
		if !errors.As(err, &missing) {
			t.Fatalf("Expected *MissingLayerError, got %v", err)
		}
		if missing.Layer != calibration.LayerPrecision {
			t.Errorf("Expected missing layer @p, got %s", missing.Layer)
		}
	})

	t.Run("extra key", func(t *testing.T) {
		m := map[string]float64{}
		for k, s := range valid {
			m[k] = s
		}
		m["@extra"] = 0.5

		_, err := ParseScoreVector(m)
		var unknown *calibration.UnknownLayerError
		if !errors.As(err, &unknown) {
			t.Fatalf("Expected *UnknownLayerError, got %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		m := map[string]float64{}
		for k, s := range valid {
			m[k] = s
		}
		m["@m"] = -0.1

		_, err := ParseScoreVector(m)
		var rng *ScoreRangeError
		if !errors.As(err, &rng) {
			t.Fatalf("Expected *ScoreRangeError, got %v", err)
		}
	})
}

func TestNewWeightSet_NormalizationRejection(t *testing.T) {
	for _, delta := range []float64{-0.02, -0.01, 0.01} {
		linear := executorLinear()
		linear[calibration.LayerBehavior] += delta // break the mass

		_, err := NewWeightSet("EXECUTOR/bad", RoleExecutor, linear, executorInteractions(t))
		if err == nil {
			t.Fatalf("Expected WeightNormalizationError for sum offset %g", delta)
		}

		var norm *WeightNormalizationError
		if !errors.As(err, &norm) {
			t.Fatalf("Expected *WeightNormalizationError, got %T: %v", err, err)
		}
		if math.Abs(norm.Sum-(1.0+delta)) > 1e-9 {
			t.Errorf("Error should report the actual sum %g, got %g", 1.0+delta, norm.Sum)
		}
	}
}

func TestNewWeightSet_ToleratesFloatSlack(t *testing.T) {
	linear := executorLinear()
	linear[calibration.LayerBehavior] += 5e-7 // inside the 1e-6 tolerance

	if _, err := NewWeightSet("EXECUTOR/slack", RoleExecutor, linear, executorInteractions(t)); err != nil {
		t.Errorf("Sum within tolerance should be accepted, got: %v", err)
	}
}

func TestNewWeightSet_RejectsNegativeWeight(t *testing.T) {
	linear := executorLinear()
	linear[calibration.LayerMethod] = -0.04
	linear[calibration.LayerBehavior] += 0.08 // keep the mass at 1

	_, err := NewWeightSet("EXECUTOR/neg", RoleExecutor, linear, executorInteractions(t))
	var neg *NegativeWeightError
	if !errors.As(err, &neg) {
		t.Fatalf("Expected *NegativeWeightError, got %v", err)
	}
}

func TestNewLayerPair_Canonicalization(t *testing.T) {
	ab, err := NewLayerPair(calibration.LayerChain, calibration.LayerUnits)
	if err != nil {
		t.Fatalf("NewLayerPair() failed: %v", err)
	}
	ba, err := NewLayerPair(calibration.LayerUnits, calibration.LayerChain)
	if err != nil {
		t.Fatalf("NewLayerPair() failed: %v", err)
	}

	if ab != ba {
		t.Errorf("Pairs must be unordered: %v != %v", ab, ba)
	}
	if ab.First != calibration.LayerChain {
		t.Errorf("Canonical order should follow layer order, got first=%s", ab.First)
	}

	if _, err := NewLayerPair(calibration.LayerChain, calibration.LayerChain); err == nil {
		t.Error("Self-pair should be rejected")
	}
}

func TestParseRole(t *testing.T) {
	for token, want := range map[string]Role{
		"EXECUTOR": RoleExecutor,
		"cluster":  RoleCluster,
		" Planner": RolePlanner,
		"AUDITOR":  RoleAuditor,
	} {
		got, err := ParseRole(token)
		if err != nil {
			t.Errorf("ParseRole(%q) failed: %v", token, err)
			continue
		}
		if got != want {
			t.Errorf("ParseRole(%q) = %v, want %v", token, got, want)
		}
	}

	_, err := ParseRole("TYPE_A")
	var unknown *UnknownRoleError
	if !errors.As(err, &unknown) {
		t.Errorf("Expected *UnknownRoleError for unregistered token, got %v", err)
	}
}

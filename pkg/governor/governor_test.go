package governor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/calibration"
	"mercator-hq/ganymede/pkg/governor/journal"
)

// defaultBounds are the product bounds used throughout the tests.
var defaultBounds = ProductBounds{Min: 0.05, Max: 20.0}

// newTestGovernor creates a governor with a memory journal.
func newTestGovernor(t *testing.T) (*Governor, *journal.MemoryJournal) {
	t.Helper()

	j := journal.NewMemoryJournal()
	g, err := New(defaultBounds, j)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g, j
}

// buildGraph declares nodes and edges or fails the test.
func buildGraph(t *testing.T, nodes map[string]calibration.Tier, edges [][2]string) *DependencyGraph {
	t.Helper()

	g := NewDependencyGraph()
	for id, tier := range nodes {
		if err := g.AddNode(id, tier); err != nil {
			t.Fatalf("AddNode(%q) failed: %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%q, %q) failed: %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGovern_ValidGraph(t *testing.T) {
	g, _ := newTestGovernor(t)

	graph := buildGraph(t,
		map[string]calibration.Tier{
			"@b":      calibration.TierEmpirical,
			"@chain":  calibration.TierInferential,
			"verdict": calibration.TierAudit,
		},
		[][2]string{
			{"@b", "@chain"},
			{"@chain", "verdict"},
			{"@b", "verdict"},
		},
	)

	if err := g.Govern(graph); err != nil {
		t.Errorf("Govern() should accept an acyclic, tier-respecting graph, got: %v", err)
	}
}

func TestGovern_CycleRejection(t *testing.T) {
	g, _ := newTestGovernor(t)

	graph := buildGraph(t,
		map[string]calibration.Tier{
			"a": calibration.TierEmpirical,
			"b": calibration.TierEmpirical,
			"c": calibration.TierEmpirical,
			"d": calibration.TierEmpirical,
		},
		[][2]string{
			{"a", "b"},
			{"b", "c"},
			{"c", "a"}, // back-edge
			{"c", "d"}, // downstream of the cycle, not on it
		},
	)

	err := g.Govern(graph)
	if err == nil {
		t.Fatal("Govern() should reject a cyclic graph")
	}

	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("Expected *CyclicDependencyError, got %T: %v", err, err)
	}

	// The reported cycle must be concrete: closed, and made of cycle members
	// only.
	if len(cyclic.Cycle) < 4 {
		t.Fatalf("Expected a closed 3-cycle, got %v", cyclic.Cycle)
	}
	if cyclic.Cycle[0] != cyclic.Cycle[len(cyclic.Cycle)-1] {
		t.Errorf("Cycle should be closed, got %v", cyclic.Cycle)
	}
	for _, node := range cyclic.Cycle {
		if node == "d" {
			t.Errorf("Node 'd' is not on the cycle but was reported in %v", cyclic.Cycle)
		}
	}
	if !strings.Contains(err.Error(), "->") {
		t.Errorf("Error message should render the cycle, got %q", err.Error())
	}
}

func TestGovern_SelfLoop(t *testing.T) {
	g, _ := newTestGovernor(t)

	graph := buildGraph(t,
		map[string]calibration.Tier{"a": calibration.TierEmpirical},
		[][2]string{{"a", "a"}},
	)

	var cyclic *CyclicDependencyError
	if err := g.Govern(graph); !errors.As(err, &cyclic) {
		t.Fatalf("Expected *CyclicDependencyError for self-loop, got %v", err)
	}
}

func TestGovern_LevelInversion(t *testing.T) {
	g, _ := newTestGovernor(t)

	// An audit-tier node feeding an inferential-tier computation.
	graph := buildGraph(t,
		map[string]calibration.Tier{
			"raw":      calibration.TierEmpirical,
			"derived":  calibration.TierInferential,
			"reviewed": calibration.TierAudit,
		},
		[][2]string{
			{"raw", "derived"},
			{"reviewed", "derived"}, // inversion: audit -> inferential
		},
	)

	err := g.Govern(graph)
	var inv *LevelInversionError
	if !errors.As(err, &inv) {
		t.Fatalf("Expected *LevelInversionError, got %T: %v", err, err)
	}
	if inv.From != "reviewed" || inv.To != "derived" {
		t.Errorf("Error should name the inverted edge reviewed->derived, got %s->%s", inv.From, inv.To)
	}
	if inv.FromTier != calibration.TierAudit || inv.ToTier != calibration.TierInferential {
		t.Errorf("Error should carry both tiers, got %s->%s", inv.FromTier, inv.ToTier)
	}
}

func TestGovern_SameTierEdgeAllowed(t *testing.T) {
	g, _ := newTestGovernor(t)

	graph := buildGraph(t,
		map[string]calibration.Tier{
			"x": calibration.TierInferential,
			"y": calibration.TierInferential,
		},
		[][2]string{{"x", "y"}},
	)

	if err := g.Govern(graph); err != nil {
		t.Errorf("Edges within a tier are allowed, got: %v", err)
	}
}

func TestDependencyGraph_TopologicalOrderDeterminism(t *testing.T) {
	build := func() *DependencyGraph {
		return buildGraph(t,
			map[string]calibration.Tier{
				"a": calibration.TierEmpirical,
				"b": calibration.TierEmpirical,
				"c": calibration.TierInferential,
				"d": calibration.TierAudit,
			},
			[][2]string{{"a", "c"}, {"b", "c"}, {"c", "d"}},
		)
	}

	first, err := build().TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := build().TopologicalOrder()
		if err != nil {
			t.Fatalf("TopologicalOrder() failed: %v", err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("Order is not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestDependencyGraph_UndeclaredNode(t *testing.T) {
	g := NewDependencyGraph()
	if err := g.AddNode("a", calibration.TierEmpirical); err != nil {
		t.Fatalf("AddNode() failed: %v", err)
	}

	err := g.AddEdge("a", "ghost")
	var unknown *UnknownNodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected *UnknownNodeError, got %v", err)
	}
	if unknown.Node != "ghost" {
		t.Errorf("Error should name the undeclared node, got %q", unknown.Node)
	}
}

func TestCertifyProduct_NoClampInsideBounds(t *testing.T) {
	g, j := newTestGovernor(t)
	ctx := context.Background()

	got := g.CertifyProduct(ctx, "confidence-combine", 0.8, 0.9)
	want := 0.8 * 0.9
	if got != want {
		t.Errorf("CertifyProduct() = %g, want unclamped %g", got, want)
	}

	count, err := j.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("No clamp event should be journaled for in-bounds products, got %d", count)
	}
}

func TestCertifyProduct_ClampsAndJournals(t *testing.T) {
	g, j := newTestGovernor(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		factors []float64
		want    float64
	}{
		{"below min", []float64{0.1, 0.1}, defaultBounds.Min},
		{"above max", []float64{10, 10}, defaultBounds.Max},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.CertifyProduct(ctx, "stage-"+tt.name, tt.factors...)
			if got != tt.want {
				t.Errorf("CertifyProduct() = %g, want clamped %g", got, tt.want)
			}

			events, err := j.List(ctx, &journal.Query{Stage: "stage-" + tt.name})
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("Expected 1 journaled clamp event, got %d", len(events))
			}
			event := events[0]
			if event.After != tt.want {
				t.Errorf("Event should record the clamped value %g, got %g", tt.want, event.After)
			}
			if event.Before == event.After {
				t.Error("Event should record distinct before/after values")
			}
		})
	}
}

func TestNewProductBounds_Validation(t *testing.T) {
	tests := []struct {
		min, max float64
		valid    bool
	}{
		{0.05, 20.0, true},
		{1.0, 1.0, true},
		{0, 10, false},    // zero is not strictly positive
		{-1, 10, false},
		{5, 0.5, false},   // inverted
		{0.5, -1, false},
	}

	for _, tt := range tests {
		_, err := NewProductBounds(tt.min, tt.max)
		if tt.valid && err != nil {
			t.Errorf("NewProductBounds(%g, %g) should be valid, got: %v", tt.min, tt.max, err)
		}
		if !tt.valid {
			var invalid *InvalidProductBoundsError
			if !errors.As(err, &invalid) {
				t.Errorf("NewProductBounds(%g, %g) should fail with *InvalidProductBoundsError, got %v", tt.min, tt.max, err)
			}
		}
	}
}

package governor

import (
	"fmt"
	"sort"

	"mercator-hq/ganymede/pkg/calibration"
)

// Edge is a directed "depends-on" edge: From's value flow is consumed when
// computing To.
type Edge struct {
	From string
	To   string
}

// String renders the edge as "from -> to".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// DependencyGraph is the directed graph over layers and methods used for
// structural validation. It is built once by the calibration loader and then
// treated as read-only; it plays no part in per-evaluation work.
type DependencyGraph struct {
	tiers map[string]calibration.Tier
	edges []Edge
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{tiers: make(map[string]calibration.Tier)}
}

// AddNode declares a node with its epistemic tier. Re-declaring a node with
// a different tier is a construction error.
func (g *DependencyGraph) AddNode(id string, tier calibration.Tier) error {
	if id == "" {
		return fmt.Errorf("dependency node requires an id")
	}
	if existing, ok := g.tiers[id]; ok && existing != tier {
		return fmt.Errorf("node %q declared twice with conflicting tiers (%s, %s)", id, existing, tier)
	}
	g.tiers[id] = tier
	return nil
}

// AddEdge declares that from's value flow is consumed when computing to.
// Both endpoints must already be declared.
func (g *DependencyGraph) AddEdge(from, to string) error {
	if _, ok := g.tiers[from]; !ok {
		return &UnknownNodeError{Node: from}
	}
	if _, ok := g.tiers[to]; !ok {
		return &UnknownNodeError{Node: to}
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
	return nil
}

// Nodes returns the node identifiers in sorted order.
func (g *DependencyGraph) Nodes() []string {
	nodes := make([]string, 0, len(g.tiers))
	for id := range g.tiers {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	return nodes
}

// Tier returns the tier of a node.
func (g *DependencyGraph) Tier(id string) (calibration.Tier, bool) {
	tier, ok := g.tiers[id]
	return tier, ok
}

// Edges returns a copy of the declared edges.
func (g *DependencyGraph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// successors returns the adjacency list keyed by source node, with sorted
// targets for deterministic traversal.
func (g *DependencyGraph) successors() map[string][]string {
	adj := make(map[string][]string, len(g.tiers))
	for _, e := range g.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}
	return adj
}

// TopologicalOrder returns the nodes in a dependency-respecting order, or a
// CyclicDependencyError naming a concrete cycle when no such order exists.
// The order is deterministic: ties are broken lexicographically.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.tiers))
	for id := range g.tiers {
		indegree[id] = 0
	}
	for _, e := range g.edges {
		indegree[e.To]++
	}

	adj := g.successors()

	// Kahn's algorithm over a sorted frontier.
	var frontier []string
	for id, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, id)
		}
	}
	sort.Strings(frontier)

	order := make([]string, 0, len(g.tiers))
	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]
		order = append(order, node)

		for _, next := range adj[node] {
			indegree[next]--
			if indegree[next] == 0 {
				frontier = insertSorted(frontier, next)
			}
		}
	}

	if len(order) != len(g.tiers) {
		return nil, &CyclicDependencyError{Cycle: g.findCycle(indegree)}
	}
	return order, nil
}

// insertSorted inserts id into a sorted slice, keeping it sorted.
func insertSorted(sorted []string, id string) []string {
	i := sort.SearchStrings(sorted, id)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = id
	return sorted
}

// findCycle extracts one concrete cycle from the nodes left with positive
// in-degree after Kahn's algorithm. Each such node still has an unprocessed
// predecessor, so a backward walk restricted to them must revisit a node.
func (g *DependencyGraph) findCycle(indegree map[string]int) []string {
	remaining := make(map[string]bool)
	for id, deg := range indegree {
		if deg > 0 {
			remaining[id] = true
		}
	}

	// Predecessor lists restricted to remaining nodes, sorted for
	// deterministic extraction.
	preds := make(map[string][]string, len(remaining))
	for _, e := range g.edges {
		if remaining[e.From] && remaining[e.To] {
			preds[e.To] = append(preds[e.To], e.From)
		}
	}
	for _, sources := range preds {
		sort.Strings(sources)
	}

	var start string
	for _, id := range g.Nodes() {
		if remaining[id] {
			start = id
			break
		}
	}

	visited := make(map[string]int) // node -> position in backward walk
	var walk []string
	node := start
	for {
		if pos, seen := visited[node]; seen {
			// walk[pos:] is the cycle in reverse edge direction.
			reversed := walk[pos:]
			cycle := make([]string, 0, len(reversed)+1)
			for i := len(reversed) - 1; i >= 0; i-- {
				cycle = append(cycle, reversed[i])
			}
			return append(cycle, reversed[len(reversed)-1]) // close the cycle
		}
		visited[node] = len(walk)
		walk = append(walk, node)
		node = preds[node][0]
	}
}

// Inversions returns every edge whose source tier exceeds its target tier,
// in declaration order.
func (g *DependencyGraph) Inversions() []Edge {
	var inverted []Edge
	for _, e := range g.edges {
		if g.tiers[e.From] > g.tiers[e.To] {
			inverted = append(inverted, e)
		}
	}
	return inverted
}

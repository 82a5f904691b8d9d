package loader

import (
	"gopkg.in/yaml.v3"
)

// yamlDocument is the intermediate structure a calibration file unmarshals
// into before validation and construction.
type yamlDocument struct {
	CohortVersion string             `yaml:"cohort_version"`
	Layers        []yamlLayer        `yaml:"layers"`
	WeightSets    []yamlWeightSet    `yaml:"weight_sets"`
	Graph         yamlGraph          `yaml:"graph"`
	ProductBounds *yamlProductBounds `yaml:"product_bounds"`
}

// yamlLayer is one calibration layer declaration.
type yamlLayer struct {
	LayerID    string          `yaml:"layer_id"`
	Version    string          `yaml:"version"`
	Rationale  string          `yaml:"rationale"`
	Evidence   []yamlEvidence  `yaml:"evidence"`
	Parameters []yamlParameter `yaml:"parameters"`
	CreatedAt  string          `yaml:"created_at"` // RFC 3339, optional
}

// yamlEvidence is one evidence reference.
type yamlEvidence struct {
	Locator   string `yaml:"locator"`
	ContentID string `yaml:"content_id"`
}

// yamlParameter is one bounded parameter declaration.
type yamlParameter struct {
	Name   string     `yaml:"name"`
	Value  float64    `yaml:"value"`
	Bounds yamlBounds `yaml:"bounds"`
}

// yamlBounds is a closed interval.
type yamlBounds struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// yamlWeightSet is one per-role fusion weight table.
type yamlWeightSet struct {
	ID           string             `yaml:"id"`
	Role         string             `yaml:"role"`
	Linear       map[string]float64 `yaml:"linear"`
	Interactions []yamlInteraction  `yaml:"interactions"`
}

// yamlInteraction is one unordered-pair interaction weight.
type yamlInteraction struct {
	Pair   []string `yaml:"pair"`
	Weight float64  `yaml:"weight"`
}

// yamlGraph declares the dependency graph.
type yamlGraph struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

// yamlNode is one graph node with its epistemic tier.
type yamlNode struct {
	ID   string `yaml:"id"`
	Tier string `yaml:"tier"`
}

// yamlEdge declares "From is consumed by To".
type yamlEdge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// yamlProductBounds is the governor's clamp window.
type yamlProductBounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// parseYAMLBytes unmarshals a calibration document.
func parseYAMLBytes(data []byte) (*yamlDocument, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

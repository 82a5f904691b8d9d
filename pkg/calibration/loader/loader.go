package loader

import (
	"fmt"
	"os"
	"time"

	"mercator-hq/ganymede/pkg/calibration"
	"mercator-hq/ganymede/pkg/fusion"
	"mercator-hq/ganymede/pkg/governor"
)

// Default clamp window applied when a document omits product_bounds.
const (
	DefaultMinProduct = 1e-4
	DefaultMaxProduct = 1e4
)

// maxDocumentSize caps calibration file size (default: 10MB).
const maxDocumentSize = 10 * 1024 * 1024

// Bundle is a fully constructed calibration cohort: everything the engine
// needs to evaluate units, loaded from one document.
type Bundle struct {
	// CohortVersion tags the calibration cohort this bundle came from.
	CohortVersion string

	// Layers holds the calibration layers keyed by layer token.
	Layers map[string]*calibration.Layer

	// WeightSets holds one fusion weight set per role.
	WeightSets map[fusion.Role]*fusion.WeightSet

	// Graph is the declared dependency graph. Callers must gate it through
	// governor.Govern before serving evaluations.
	Graph *governor.DependencyGraph

	// ProductBounds is the governor's clamp window.
	ProductBounds governor.ProductBounds

	// SourcePath is the file the bundle was loaded from, empty for
	// in-memory documents.
	SourcePath string
}

// WeightSet returns the weight set for a role.
func (b *Bundle) WeightSet(role fusion.Role) (*fusion.WeightSet, error) {
	ws, ok := b.WeightSets[role]
	if !ok {
		return nil, fmt.Errorf("no weight set declared for role %s in cohort %s", role, b.CohortVersion)
	}
	return ws, nil
}

// Loader parses calibration documents.
type Loader struct {
	maxSize int64
}

// NewLoader creates a loader with default limits.
func NewLoader() *Loader {
	return &Loader{maxSize: maxDocumentSize}
}

// Load reads and builds the calibration document at path. All document
// problems are accumulated into a single ErrorList so one load reports every
// defect.
func (l *Loader) Load(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Message: "failed to access document", Cause: err}
	}
	if info.Size() > l.maxSize {
		return nil, &DocumentError{
			Path:    path,
			Message: fmt.Sprintf("document size %d exceeds maximum %d bytes", info.Size(), l.maxSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Message: "failed to read document", Cause: err}
	}
	return l.LoadBytes(data, path)
}

// LoadBytes builds a calibration document from memory. sourcePath is used in
// error messages only.
func (l *Loader) LoadBytes(data []byte, sourcePath string) (*Bundle, error) {
	doc, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &DocumentError{Path: sourcePath, Message: "YAML parsing failed", Cause: err}
	}

	errs := &ErrorList{}
	bundle := &Bundle{
		CohortVersion: doc.CohortVersion,
		Layers:        make(map[string]*calibration.Layer),
		WeightSets:    make(map[fusion.Role]*fusion.WeightSet),
		SourcePath:    sourcePath,
	}

	if doc.CohortVersion == "" {
		errs.Add(&DocumentError{Path: sourcePath, Message: "cohort_version is required"})
	}

	l.buildLayers(doc, bundle, sourcePath, errs)
	l.buildWeightSets(doc, bundle, sourcePath, errs)
	l.buildGraph(doc, bundle, sourcePath, errs)
	l.buildProductBounds(doc, bundle, sourcePath, errs)

	if errs.HasErrors() {
		return nil, errs
	}
	return bundle, nil
}

func (l *Loader) buildLayers(doc *yamlDocument, bundle *Bundle, sourcePath string, errs *ErrorList) {
	for i, yl := range doc.Layers {
		section := fmt.Sprintf("layers[%d]", i)

		if !calibration.IsValidLayer(yl.LayerID) {
			errs.Add(&DocumentError{
				Path:    sourcePath,
				Section: section,
				Message: fmt.Sprintf("unknown layer token %q", yl.LayerID),
			})
			continue
		}
		if _, dup := bundle.Layers[yl.LayerID]; dup {
			errs.Add(&DocumentError{
				Path:    sourcePath,
				Section: section,
				Message: fmt.Sprintf("duplicate layer %q", yl.LayerID),
			})
			continue
		}

		params := make([]calibration.BoundedParameter, 0, len(yl.Parameters))
		ok := true
		for _, yp := range yl.Parameters {
			bounds, err := calibration.NewClosedInterval(yp.Bounds.Lower, yp.Bounds.Upper)
			if err != nil {
				errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: fmt.Sprintf("parameter %q", yp.Name), Cause: err})
				ok = false
				continue
			}
			param, err := calibration.NewBoundedParameter(yp.Name, yp.Value, bounds)
			if err != nil {
				errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: fmt.Sprintf("parameter %q", yp.Name), Cause: err})
				ok = false
				continue
			}
			params = append(params, param)
		}

		evidence := make([]calibration.EvidenceReference, 0, len(yl.Evidence))
		for _, ye := range yl.Evidence {
			ref, err := calibration.NewEvidenceReference(ye.Locator, ye.ContentID)
			if err != nil {
				errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: "evidence", Cause: err})
				ok = false
				continue
			}
			evidence = append(evidence, ref)
		}
		if !ok {
			continue
		}

		createdAt := time.Now().UTC()
		if yl.CreatedAt != "" {
			parsed, err := time.Parse(time.RFC3339, yl.CreatedAt)
			if err != nil {
				errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: "created_at must be RFC 3339", Cause: err})
				continue
			}
			createdAt = parsed
		}

		layer, err := calibration.NewLayer(yl.LayerID, yl.Version, params, yl.Rationale, evidence, createdAt)
		if err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: "layer construction failed", Cause: err})
			continue
		}
		bundle.Layers[yl.LayerID] = layer
	}
}

func (l *Loader) buildWeightSets(doc *yamlDocument, bundle *Bundle, sourcePath string, errs *ErrorList) {
	for i, yw := range doc.WeightSets {
		section := fmt.Sprintf("weight_sets[%d]", i)

		role, err := fusion.ParseRole(yw.Role)
		if err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: "role", Cause: err})
			continue
		}
		if _, dup := bundle.WeightSets[role]; dup {
			errs.Add(&DocumentError{
				Path:    sourcePath,
				Section: section,
				Message: fmt.Sprintf("duplicate weight set for role %s", role),
			})
			continue
		}

		linear := make(map[calibration.LayerID]float64, len(yw.Linear))
		ok := true
		for token, weight := range yw.Linear {
			if !calibration.IsValidLayer(token) {
				errs.Add(&DocumentError{
					Path:    sourcePath,
					Section: section,
					Message: fmt.Sprintf("unknown layer token %q in linear weights", token),
				})
				ok = false
				continue
			}
			linear[calibration.LayerID(token)] = weight
		}

		interactions := make(map[fusion.LayerPair]float64, len(yw.Interactions))
		for j, yi := range yw.Interactions {
			if len(yi.Pair) != 2 {
				errs.Add(&DocumentError{
					Path:    sourcePath,
					Section: section,
					Message: fmt.Sprintf("interactions[%d]: pair must name exactly two layers", j),
				})
				ok = false
				continue
			}
			pair, err := fusion.NewLayerPair(calibration.LayerID(yi.Pair[0]), calibration.LayerID(yi.Pair[1]))
			if err != nil {
				errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: fmt.Sprintf("interactions[%d]", j), Cause: err})
				ok = false
				continue
			}
			if _, dup := interactions[pair]; dup {
				errs.Add(&DocumentError{
					Path:    sourcePath,
					Section: section,
					Message: fmt.Sprintf("interactions[%d]: duplicate pair %s", j, pair),
				})
				ok = false
				continue
			}
			interactions[pair] = yi.Weight
		}
		if !ok {
			continue
		}

		ws, err := fusion.NewWeightSet(yw.ID, role, linear, interactions)
		if err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: "weight set construction failed", Cause: err})
			continue
		}
		bundle.WeightSets[role] = ws
	}
}

func (l *Loader) buildGraph(doc *yamlDocument, bundle *Bundle, sourcePath string, errs *ErrorList) {
	graph := governor.NewDependencyGraph()
	for i, yn := range doc.Graph.Nodes {
		section := fmt.Sprintf("graph.nodes[%d]", i)
		tier, err := calibration.ParseTier(yn.Tier)
		if err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Message: fmt.Sprintf("node %q", yn.ID), Cause: err})
			continue
		}
		if err := graph.AddNode(yn.ID, tier); err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Cause: err, Message: "node declaration rejected"})
		}
	}
	for i, ye := range doc.Graph.Edges {
		section := fmt.Sprintf("graph.edges[%d]", i)
		if err := graph.AddEdge(ye.From, ye.To); err != nil {
			errs.Add(&DocumentError{Path: sourcePath, Section: section, Cause: err, Message: "edge declaration rejected"})
		}
	}
	bundle.Graph = graph
}

func (l *Loader) buildProductBounds(doc *yamlDocument, bundle *Bundle, sourcePath string, errs *ErrorList) {
	min, max := DefaultMinProduct, DefaultMaxProduct
	if doc.ProductBounds != nil {
		min, max = doc.ProductBounds.Min, doc.ProductBounds.Max
	}
	bounds, err := governor.NewProductBounds(min, max)
	if err != nil {
		errs.Add(&DocumentError{Path: sourcePath, Section: "product_bounds", Cause: err, Message: "invalid clamp window"})
		return
	}
	bundle.ProductBounds = bounds
}

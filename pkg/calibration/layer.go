package calibration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AcceptedLocatorPrefixes are the namespaces an evidence locator may point
// into: source code, build artifacts, or documentation. Anything else is not
// reviewable and is rejected at construction.
var AcceptedLocatorPrefixes = [3]string{"src/", "artifacts/", "docs/"}

// EvidenceReference is a provenance record attached to a calibration
// decision: a locator into an accepted namespace plus an optional content
// identifier (e.g. a digest of the referenced artifact).
type EvidenceReference struct {
	Locator   string `json:"locator" yaml:"locator"`
	ContentID string `json:"content_id,omitempty" yaml:"content_id,omitempty"`
}

// NewEvidenceReference constructs an evidence reference, validating the
// locator prefix.
func NewEvidenceReference(locator, contentID string) (EvidenceReference, error) {
	for _, prefix := range AcceptedLocatorPrefixes {
		if strings.HasPrefix(locator, prefix) && len(locator) > len(prefix) {
			return EvidenceReference{Locator: locator, ContentID: contentID}, nil
		}
	}
	return EvidenceReference{}, &InvalidLocatorError{Locator: locator}
}

// BoundedParameter is an immutable scalar that satisfied its closed interval
// at construction time. There is no Set operation: a different value means a
// new parameter in a new calibration layer version.
type BoundedParameter struct {
	name   string
	value  float64
	bounds ClosedInterval
}

// NewBoundedParameter constructs a bounded parameter. Construction fails with
// OutOfBoundsError when value violates bounds; the value is never clamped.
func NewBoundedParameter(name string, value float64, bounds ClosedInterval) (BoundedParameter, error) {
	if name == "" {
		return BoundedParameter{}, fmt.Errorf("bounded parameter requires a name")
	}
	if bounds.Lower > bounds.Upper {
		return BoundedParameter{}, &InvalidIntervalError{Lower: bounds.Lower, Upper: bounds.Upper}
	}
	if !bounds.Contains(value) {
		return BoundedParameter{}, &OutOfBoundsError{Name: name, Value: value, Bounds: bounds}
	}
	return BoundedParameter{name: name, value: value, bounds: bounds}, nil
}

// Name returns the parameter name.
func (p BoundedParameter) Name() string { return p.name }

// Value returns the parameter value.
func (p BoundedParameter) Value() float64 { return p.value }

// Bounds returns the closed interval the value satisfies.
func (p BoundedParameter) Bounds() ClosedInterval { return p.bounds }

// Layer is a named, versioned, immutable set of bounded parameters together
// with the provenance that justifies them. Layers are facts about the system
// at a point in time: recalibration supersedes a layer with a new version, it
// never edits one in place.
type Layer struct {
	layerID     string
	version     string
	parameters  map[string]BoundedParameter
	rationale   string
	evidence    []EvidenceReference
	createdAt   time.Time
	contentHash string
}

// NewLayer constructs a calibration layer. Construction fails with
// IncompleteProvenanceError when the rationale or the evidence list is empty.
// The content hash is computed over a deterministic rendering of the layer
// state, so two layers with identical content hash identically regardless of
// parameter insertion order.
func NewLayer(layerID, version string, params []BoundedParameter, rationale string, evidence []EvidenceReference, createdAt time.Time) (*Layer, error) {
	if layerID == "" {
		return nil, fmt.Errorf("calibration layer requires a layer_id")
	}
	if version == "" {
		return nil, fmt.Errorf("calibration layer %q requires a version", layerID)
	}
	if strings.TrimSpace(rationale) == "" {
		return nil, &IncompleteProvenanceError{LayerID: layerID, Missing: "rationale"}
	}
	if len(evidence) == 0 {
		return nil, &IncompleteProvenanceError{LayerID: layerID, Missing: "evidence"}
	}

	byName := make(map[string]BoundedParameter, len(params))
	for _, p := range params {
		if _, dup := byName[p.name]; dup {
			return nil, fmt.Errorf("calibration layer %q: duplicate parameter %q", layerID, p.name)
		}
		byName[p.name] = p
	}

	layer := &Layer{
		layerID:    layerID,
		version:    version,
		parameters: byName,
		rationale:  rationale,
		evidence:   append([]EvidenceReference(nil), evidence...),
		createdAt:  createdAt.UTC(),
	}
	layer.contentHash = layer.computeContentHash()
	return layer, nil
}

// LayerID returns the layer identifier.
func (l *Layer) LayerID() string { return l.layerID }

// Version returns the cohort/version tag.
func (l *Layer) Version() string { return l.version }

// Rationale returns the human-readable justification for this calibration.
func (l *Layer) Rationale() string { return l.rationale }

// CreatedAt returns the construction timestamp in UTC.
func (l *Layer) CreatedAt() time.Time { return l.createdAt }

// ContentHash returns the hex SHA-256 digest of the layer's deterministic
// rendering.
func (l *Layer) ContentHash() string { return l.contentHash }

// Parameter looks up a bounded parameter by name.
func (l *Layer) Parameter(name string) (BoundedParameter, bool) {
	p, ok := l.parameters[name]
	return p, ok
}

// ParameterNames returns the parameter names in sorted order.
func (l *Layer) ParameterNames() []string {
	names := make([]string, 0, len(l.parameters))
	for name := range l.parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evidence returns a copy of the ordered evidence references.
func (l *Layer) Evidence() []EvidenceReference {
	return append([]EvidenceReference(nil), l.evidence...)
}

// computeContentHash renders the layer state with sorted parameter names and
// shortest round-trip float formatting, then digests it with SHA-256.
func (l *Layer) computeContentHash() string {
	var sb strings.Builder
	sb.WriteString("layer:")
	sb.WriteString(l.layerID)
	sb.WriteString("|version:")
	sb.WriteString(l.version)
	sb.WriteString("|rationale:")
	sb.WriteString(l.rationale)
	for _, name := range l.ParameterNames() {
		p := l.parameters[name]
		sb.WriteString("|param:")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(strconv.FormatFloat(p.value, 'g', -1, 64))
		sb.WriteString(" in ")
		sb.WriteString(p.bounds.String())
	}
	for _, ev := range l.evidence {
		sb.WriteString("|evidence:")
		sb.WriteString(ev.Locator)
		if ev.ContentID != "" {
			sb.WriteString("#")
			sb.WriteString(ev.ContentID)
		}
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

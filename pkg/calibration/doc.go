// Package calibration defines the immutable calibration data model: bounded
// parameters, evidence references, calibration layers, the closed set of
// quality-layer identifiers, and the epistemic tier ordering.
//
// Every calibrated number in the system is represented as a BoundedParameter
// that must satisfy its closed interval at construction time, and every
// parameter set is wrapped in a CalibrationLayer that carries a rationale and
// at least one reviewable evidence reference. Nothing in this package is
// mutable after construction: recalibration means constructing a new
// CalibrationLayer under a new version tag, never editing an existing one.
//
// Construction failures are reported through the typed errors in errors.go
// (OutOfBoundsError, IncompleteProvenanceError, ...). These are fatal
// calibration-load errors: callers must treat them as startup blockers, not
// as per-request conditions.
package calibration

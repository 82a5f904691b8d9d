// Package loader parses calibration documents: the per-cohort YAML files
// declaring calibration layers, per-role fusion weight sets, the dependency
// graph, and the governor's product bounds.
//
// Loading only constructs and validates the document's contents; the
// structural gates (cycle and level-inversion checks) run afterwards via
// governor.Govern. A loaded bundle is immutable: recalibration means loading
// a new document and restarting, never mutating a live one.
package loader

// Package governor validates the rules that govern how calibration layers
// may interact, and certifies bounded multiplicative combinations.
//
// Two structural checks run against the dependency graph at calibration-load
// time, never per evaluation:
//
//   - Cycle detection: a topological sort over the "depends-on" edges; any
//     back-edge fails the load with CyclicDependencyError naming a concrete
//     cycle.
//   - Level-inversion detection: given the fixed tier ordering
//     empirical < inferential < audit, any edge that feeds a higher tier's
//     value into a lower tier's computation fails the load with
//     LevelInversionError naming the edge.
//
// Both checks are load-time gates: a failure must prevent the process from
// entering a ready state at all. There is no degraded mode.
//
// The governor also certifies multiplicative fusion steps elsewhere in the
// pipeline: CertifyProduct clamps a product into a configured strictly
// positive closed interval and records every clamp to the journal. Clamping
// is an expected, logged event, never an error.
package governor

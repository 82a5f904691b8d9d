// Package veto applies layer-level override results in a deterministic,
// specificity-ordered cascade.
//
// A veto is not an error: it is an expected, first-class outcome. When a
// cascade selects a veto, fusion is skipped for that unit and the unit's
// final status is the veto's reason rather than a fused score.
//
// Determinism is the coordinator's contract: results are sorted inside the
// cascade (stable, by specificity descending, ties broken by the fixed layer
// priority order), so upstream evaluation order never influences which veto
// wins.
package veto

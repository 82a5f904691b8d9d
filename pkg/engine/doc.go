// Package engine assembles the calibration pipeline: a loaded calibration
// bundle, the governor's structural gates, the veto cascade, Choquet fusion,
// and the manifest recorder, behind one Evaluate operation.
//
// Construction is the readiness gate. New refuses to build an engine over a
// graph the governor rejects, so a running engine implies the cohort's
// dependency structure was certified. All calibration state is carried
// explicitly by the engine value; there are no package-level globals.
package engine

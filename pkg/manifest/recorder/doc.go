// Package recorder is the single writer of the calibration manifest.
//
// All appends funnel through one Recorder, which serializes them under a
// mutex so the hash chain extends one entry at a time. Reads of prior
// entries go straight to storage and need no coordination with the writer.
package recorder

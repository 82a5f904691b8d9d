// Ganymede is a calibration fusion and interaction governance engine.
//
// It fuses per-layer quality scores into a single calibrated score using a
// Choquet 2-additive integral, governs the calibration dependency graph
// (cycle and tier-inversion gates), runs a deterministic veto cascade, and
// records every decision into an append-only, hash-chained, optionally
// signed calibration manifest.
//
// Usage:
//
//	# Validate a calibration document against the governor's gates
//	ganymede validate --calibration calibration.yaml
//
//	# Evaluate one unit from a scores file
//	ganymede evaluate --unit unit-42 --role EXECUTOR --scores scores.yaml
//
//	# Query the manifest
//	ganymede manifest query --vetoed --limit 20
//
//	# Re-verify the manifest hash chain and signatures
//	ganymede manifest verify
//
//	# Generate an Ed25519 signing keypair
//	ganymede keys generate
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}

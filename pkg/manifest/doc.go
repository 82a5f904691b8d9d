// Package manifest implements the append-only, hash-chained audit record of
// fusion decisions.
//
// Every evaluation produces exactly one Entry. The entry's inputs hash is a
// SHA-256 digest over a canonical rendering of the full decision inputs
// (sorted keys, no extraneous whitespace, deterministic numeric formatting),
// so logically identical inputs hash identically regardless of original key
// order or platform. Entries additionally chain: each entry records the hash
// of its predecessor, and each entry's own hash covers all of its audited
// fields, so any edit to history is detectable.
//
// Signing is optional and explicit: an Entry may carry an HMAC-SHA256 or
// Ed25519 signature over its canonical form plus hash. Verification is a
// separate operation exposed to auditors (see VerifyEntry, VerifyChain, and
// the audit subpackage); nothing verifies implicitly.
//
// Entries are never edited or deleted. The storage subpackage enforces the
// append-only contract at the backend level.
package manifest

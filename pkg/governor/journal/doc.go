// Package journal persists clamp events produced by the governor's bounded
// multiplicative fusion. Clamps are expected operational events, not errors;
// the journal exists so auditors can see when and how hard the bounds bit.
//
// Two backends are provided: an in-memory journal for tests and an SQLite
// journal (modernc.org/sqlite, no cgo) for single-instance deployments.
package journal

// Package audit re-verifies the manifest on behalf of auditors: entry
// integrity, signatures, and hash-chain continuity.
//
// Verification can be run on demand (Verifier.VerifyAll) or periodically via
// the cron-driven Scheduler. Verification never mutates the manifest; a
// failed check is reported and logged, and the affected entries are left
// exactly as found for forensics.
package audit

// Package storage provides append-only backends for manifest entries.
//
// The append-only contract is structural, not conventional: the interface
// exposes no update or delete operation, and the SQLite backend additionally
// installs triggers that abort any UPDATE or DELETE against the entries
// table, so even out-of-band SQL cannot silently rewrite history.
package storage

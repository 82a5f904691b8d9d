package manifest

import "fmt"

// CanonicalizationError reports a value that cannot be rendered into
// canonical form.
type CanonicalizationError struct {
	Reason string
}

// Error implements the error interface.
func (e *CanonicalizationError) Error() string {
	return fmt.Sprintf("canonicalization failed: %s", e.Reason)
}

// IntegrityError reports a manifest entry whose recomputed hash does not
// match its recorded hash.
type IntegrityError struct {
	EntryID  string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("entry %s: recorded hash %s does not match recomputed %s", e.EntryID, e.Expected, e.Actual)
}

// SignatureError reports a signature that failed verification or could not
// be parsed.
type SignatureError struct {
	EntryID string
	Reason  string
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("entry %s: signature invalid: %s", e.EntryID, e.Reason)
}

// ChainError reports a broken hash-chain link between consecutive entries.
type ChainError struct {
	Position int    // index of the entry whose PrevHash is wrong
	EntryID  string
	Reason   string
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	return fmt.Sprintf("chain broken at position %d (entry %s): %s", e.Position, e.EntryID, e.Reason)
}

// StorageError represents an error from a manifest storage backend.
type StorageError struct {
	Backend   string // "memory", "sqlite"
	Operation string // "append", "list", "count", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("manifest storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

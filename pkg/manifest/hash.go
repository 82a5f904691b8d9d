package manifest

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashInputs canonicalizes the decision inputs and digests them.
func HashInputs(inputs *EntryInputs) (string, error) {
	canonical, err := Canonicalize(inputs.canonicalValue())
	if err != nil {
		return "", err
	}
	return HashBytes(canonical), nil
}

// ComputeEntryHash canonicalizes the entry's audited fields and digests
// them. The digest excludes EntryHash itself and the Signature.
func ComputeEntryHash(entry *Entry) (string, error) {
	canonical, err := Canonicalize(entry.canonicalValue())
	if err != nil {
		return "", err
	}
	return HashBytes(canonical), nil
}

// signingPayload is the byte string a signature covers: the canonical entry
// rendering followed by the entry hash.
func signingPayload(entry *Entry) ([]byte, error) {
	canonical, err := Canonicalize(entry.canonicalValue())
	if err != nil {
		return nil, err
	}
	return append(canonical, []byte(entry.EntryHash)...), nil
}

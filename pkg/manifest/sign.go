package manifest

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature schemes. The scheme name prefixes every signature string so an
// auditor can tell how to verify it without out-of-band knowledge.
const (
	SchemeHMAC    = "hmac-sha256"
	SchemeEd25519 = "ed25519"
)

// Signer produces a detached signature over a signing payload.
type Signer interface {
	// Scheme returns the signature scheme name.
	Scheme() string

	// Sign returns the signature in "<scheme>:<hex>" form.
	Sign(payload []byte) (string, error)
}

// Verifier checks a detached signature against a signing payload.
type Verifier interface {
	// Verify returns nil when the signature is valid for the payload.
	Verify(payload []byte, signature string) error
}

// HMACSigner signs with a keyed HMAC-SHA256. The same key verifies.
type HMACSigner struct {
	key []byte
}

// NewHMACSigner creates an HMAC signer. The key must be non-empty.
func NewHMACSigner(key []byte) (*HMACSigner, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("hmac signing key is required")
	}
	return &HMACSigner{key: append([]byte(nil), key...)}, nil
}

// Scheme returns "hmac-sha256".
func (s *HMACSigner) Scheme() string { return SchemeHMAC }

// Sign computes the HMAC of the payload.
func (s *HMACSigner) Sign(payload []byte) (string, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return SchemeHMAC + ":" + hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the HMAC and compares in constant time.
func (s *HMACSigner) Verify(payload []byte, signature string) error {
	raw, err := decodeSignature(signature, SchemeHMAC)
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	if !hmac.Equal(raw, mac.Sum(nil)) {
		return fmt.Errorf("hmac mismatch")
	}
	return nil
}

// Ed25519Signer signs with an Ed25519 private key; verification requires
// only the public key (see Ed25519Verifier).
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer creates an Ed25519 signer.
func NewEd25519Signer(priv ed25519.PrivateKey) (*Ed25519Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid ed25519 private key size %d", len(priv))
	}
	return &Ed25519Signer{priv: priv}, nil
}

// Scheme returns "ed25519".
func (s *Ed25519Signer) Scheme() string { return SchemeEd25519 }

// Sign signs the payload.
func (s *Ed25519Signer) Sign(payload []byte) (string, error) {
	sig := ed25519.Sign(s.priv, payload)
	return SchemeEd25519 + ":" + hex.EncodeToString(sig), nil
}

// Ed25519Verifier verifies Ed25519 signatures with a public key.
type Ed25519Verifier struct {
	pub ed25519.PublicKey
}

// NewEd25519Verifier creates a verifier from a public key.
func NewEd25519Verifier(pub ed25519.PublicKey) (*Ed25519Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key size %d", len(pub))
	}
	return &Ed25519Verifier{pub: pub}, nil
}

// Verify checks the signature.
func (v *Ed25519Verifier) Verify(payload []byte, signature string) error {
	raw, err := decodeSignature(signature, SchemeEd25519)
	if err != nil {
		return err
	}
	if !ed25519.Verify(v.pub, payload, raw) {
		return fmt.Errorf("ed25519 signature mismatch")
	}
	return nil
}

// SignEntry computes and attaches a signature to an entry. The entry's
// EntryHash must already be set.
func SignEntry(entry *Entry, signer Signer) error {
	if entry.EntryHash == "" {
		return fmt.Errorf("entry hash must be computed before signing")
	}
	payload, err := signingPayload(entry)
	if err != nil {
		return err
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return err
	}
	entry.Signature = sig
	return nil
}

// VerifyEntry checks an entry's integrity: the recorded EntryHash must match
// the recomputed hash, and, when both a signature and a verifier are
// present, the signature must verify. A nil verifier skips signature
// checking; a signed entry with no verifier is reported, not ignored.
func VerifyEntry(entry *Entry, verifier Verifier) error {
	recomputed, err := ComputeEntryHash(entry)
	if err != nil {
		return err
	}
	if recomputed != entry.EntryHash {
		return &IntegrityError{EntryID: entry.ID, Expected: entry.EntryHash, Actual: recomputed}
	}

	if entry.Signature == "" {
		return nil
	}
	if verifier == nil {
		return &SignatureError{EntryID: entry.ID, Reason: "entry is signed but no verifier was provided"}
	}

	payload, err := signingPayload(entry)
	if err != nil {
		return err
	}
	if err := verifier.Verify(payload, entry.Signature); err != nil {
		return &SignatureError{EntryID: entry.ID, Reason: err.Error()}
	}
	return nil
}

// VerifyChain checks hash-chain continuity over entries in append order,
// verifying each entry's integrity along the way.
func VerifyChain(entries []*Entry, verifier Verifier) error {
	prev := GenesisHash
	for i, entry := range entries {
		if err := VerifyEntry(entry, verifier); err != nil {
			return err
		}
		if entry.PrevHash != prev {
			return &ChainError{
				Position: i,
				EntryID:  entry.ID,
				Reason:   fmt.Sprintf("prev_hash %s, expected %s", entry.PrevHash, prev),
			}
		}
		prev = entry.EntryHash
	}
	return nil
}

// decodeSignature strips and checks the scheme prefix, returning raw bytes.
func decodeSignature(signature, scheme string) ([]byte, error) {
	prefix := scheme + ":"
	if !strings.HasPrefix(signature, prefix) {
		return nil, fmt.Errorf("expected %s signature, got %q", scheme, schemeOf(signature))
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(signature, prefix))
	if err != nil {
		return nil, fmt.Errorf("malformed signature hex: %w", err)
	}
	return raw, nil
}

// schemeOf extracts the scheme prefix of a signature string.
func schemeOf(signature string) string {
	if i := strings.IndexByte(signature, ':'); i > 0 {
		return signature[:i]
	}
	return "unknown"
}

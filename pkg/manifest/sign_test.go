package manifest

import (
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/calibration"
	"mercator-hq/ganymede/pkg/veto"
)

func testEntry(t *testing.T, id, prevHash string) *Entry {
	t.Helper()

	score := 0.8869
	entry := &Entry{
		ID:          id,
		UnitID:      "unit-" + id,
		InputsHash:  HashBytes([]byte("inputs-" + id)),
		WeightSetID: "ws-executor-v3",
		Score:       &score,
		Timestamp:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		PrevHash:    prevHash,
	}
	hash, err := ComputeEntryHash(entry)
	if err != nil {
		t.Fatalf("ComputeEntryHash() error = %v", err)
	}
	entry.EntryHash = hash
	return entry
}

func TestComputeEntryHashDeterministic(t *testing.T) {
	entry := testEntry(t, "e1", GenesisHash)

	again, err := ComputeEntryHash(entry)
	if err != nil {
		t.Fatalf("ComputeEntryHash() error = %v", err)
	}
	if again != entry.EntryHash {
		t.Errorf("hash changed on recompute: %s vs %s", again, entry.EntryHash)
	}
}

func TestComputeEntryHashExcludesSignature(t *testing.T) {
	entry := testEntry(t, "e1", GenesisHash)
	before := entry.EntryHash

	entry.Signature = "hmac-sha256:deadbeef"
	after, err := ComputeEntryHash(entry)
	if err != nil {
		t.Fatalf("ComputeEntryHash() error = %v", err)
	}
	if after != before {
		t.Error("signature leaked into entry hash")
	}
}

func TestComputeEntryHashCoversVeto(t *testing.T) {
	entry := testEntry(t, "e1", GenesisHash)
	withVeto := *entry
	withVeto.Score = nil
	withVeto.Veto = &veto.Result{
		LayerID:     calibration.LayerChain,
		Triggered:   true,
		Specificity: 0.95,
		Reason:      "broken reasoning chain",
	}

	vetoHash, err := ComputeEntryHash(&withVeto)
	if err != nil {
		t.Fatalf("ComputeEntryHash() error = %v", err)
	}
	if vetoHash == entry.EntryHash {
		t.Error("veto payload did not change entry hash")
	}
}

func TestHMACSignAndVerify(t *testing.T) {
	signer, err := NewHMACSigner([]byte("manifest-test-key"))
	if err != nil {
		t.Fatalf("NewHMACSigner() error = %v", err)
	}

	entry := testEntry(t, "e1", GenesisHash)
	if err := SignEntry(entry, signer); err != nil {
		t.Fatalf("SignEntry() error = %v", err)
	}
	if entry.Signature == "" {
		t.Fatal("signature not attached")
	}
	if got := schemeOf(entry.Signature); got != SchemeHMAC {
		t.Errorf("signature scheme = %q, want %q", got, SchemeHMAC)
	}

	if err := VerifyEntry(entry, signer); err != nil {
		t.Errorf("VerifyEntry() error = %v", err)
	}
}

func TestHMACVerifyRejectsWrongKey(t *testing.T) {
	signer, _ := NewHMACSigner([]byte("key-a"))
	other, _ := NewHMACSigner([]byte("key-b"))

	entry := testEntry(t, "e1", GenesisHash)
	if err := SignEntry(entry, signer); err != nil {
		t.Fatalf("SignEntry() error = %v", err)
	}

	err := VerifyEntry(entry, other)
	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Errorf("VerifyEntry() error = %v, want SignatureError", err)
	}
}

func TestEd25519SignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	signer, err := NewEd25519Signer(priv)
	if err != nil {
		t.Fatalf("NewEd25519Signer() error = %v", err)
	}
	verifier, err := NewEd25519Verifier(pub)
	if err != nil {
		t.Fatalf("NewEd25519Verifier() error = %v", err)
	}

	entry := testEntry(t, "e1", GenesisHash)
	if err := SignEntry(entry, signer); err != nil {
		t.Fatalf("SignEntry() error = %v", err)
	}
	if got := schemeOf(entry.Signature); got != SchemeEd25519 {
		t.Errorf("signature scheme = %q, want %q", got, SchemeEd25519)
	}

	if err := VerifyEntry(entry, verifier); err != nil {
		t.Errorf("VerifyEntry() error = %v", err)
	}

	// A different key pair must reject the signature.
	otherPub, _, _ := ed25519.GenerateKey(nil)
	otherVerifier, _ := NewEd25519Verifier(otherPub)
	err = VerifyEntry(entry, otherVerifier)
	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Errorf("VerifyEntry(other key) error = %v, want SignatureError", err)
	}
}

func TestSignEntryRequiresHash(t *testing.T) {
	signer, _ := NewHMACSigner([]byte("key"))
	entry := &Entry{ID: "e1"}
	if err := SignEntry(entry, signer); err == nil {
		t.Error("SignEntry() accepted an entry without a hash")
	}
}

func TestVerifyEntryDetectsTampering(t *testing.T) {
	signer, _ := NewHMACSigner([]byte("key"))

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"score changed", func(e *Entry) { v := 0.5; e.Score = &v }},
		{"unit swapped", func(e *Entry) { e.UnitID = "unit-other" }},
		{"inputs hash swapped", func(e *Entry) { e.InputsHash = HashBytes([]byte("forged")) }},
		{"timestamp shifted", func(e *Entry) { e.Timestamp = e.Timestamp.Add(time.Second) }},
		{"prev hash rewritten", func(e *Entry) { e.PrevHash = HashBytes([]byte("elsewhere")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := testEntry(t, "e1", GenesisHash)
			if err := SignEntry(entry, signer); err != nil {
				t.Fatalf("SignEntry() error = %v", err)
			}

			tt.mutate(entry)

			err := VerifyEntry(entry, signer)
			var intErr *IntegrityError
			if !errors.As(err, &intErr) {
				t.Errorf("VerifyEntry() error = %v, want IntegrityError", err)
			}
		})
	}
}

func TestVerifyEntrySignedWithoutVerifier(t *testing.T) {
	signer, _ := NewHMACSigner([]byte("key"))
	entry := testEntry(t, "e1", GenesisHash)
	if err := SignEntry(entry, signer); err != nil {
		t.Fatalf("SignEntry() error = %v", err)
	}

	err := VerifyEntry(entry, nil)
	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Errorf("VerifyEntry(nil verifier) error = %v, want SignatureError", err)
	}
}

func TestVerifyEntryUnsignedWithoutVerifier(t *testing.T) {
	entry := testEntry(t, "e1", GenesisHash)
	if err := VerifyEntry(entry, nil); err != nil {
		t.Errorf("VerifyEntry() error = %v", err)
	}
}

func TestVerifyChain(t *testing.T) {
	e1 := testEntry(t, "e1", GenesisHash)
	e2 := testEntry(t, "e2", e1.EntryHash)
	e3 := testEntry(t, "e3", e2.EntryHash)

	if err := VerifyChain([]*Entry{e1, e2, e3}, nil); err != nil {
		t.Errorf("VerifyChain() error = %v", err)
	}

	if err := VerifyChain(nil, nil); err != nil {
		t.Errorf("VerifyChain(empty) error = %v", err)
	}
}

func TestVerifyChainDetectsBrokenLink(t *testing.T) {
	e1 := testEntry(t, "e1", GenesisHash)
	e2 := testEntry(t, "e2", e1.EntryHash)
	// e3 points past e2, as if e2 had been dropped from the middle.
	e3 := testEntry(t, "e3", e1.EntryHash)

	err := VerifyChain([]*Entry{e1, e2, e3}, nil)
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("VerifyChain() error = %v, want ChainError", err)
	}
	if chainErr.Position != 2 {
		t.Errorf("ChainError.Position = %d, want 2", chainErr.Position)
	}
	if chainErr.EntryID != "e3" {
		t.Errorf("ChainError.EntryID = %q, want %q", chainErr.EntryID, "e3")
	}
}

func TestVerifyChainRequiresGenesis(t *testing.T) {
	e1 := testEntry(t, "e1", HashBytes([]byte("not-genesis")))

	err := VerifyChain([]*Entry{e1}, nil)
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Errorf("VerifyChain() error = %v, want ChainError", err)
	}
}

func TestVerifyChainDetectsTamperedMiddle(t *testing.T) {
	signer, _ := NewHMACSigner([]byte("key"))

	e1 := testEntry(t, "e1", GenesisHash)
	e2 := testEntry(t, "e2", e1.EntryHash)
	e3 := testEntry(t, "e3", e2.EntryHash)
	for _, e := range []*Entry{e1, e2, e3} {
		if err := SignEntry(e, signer); err != nil {
			t.Fatalf("SignEntry() error = %v", err)
		}
	}

	forged := 0.99
	e2.Score = &forged

	err := VerifyChain([]*Entry{e1, e2, e3}, signer)
	var intErr *IntegrityError
	if !errors.As(err, &intErr) {
		t.Errorf("VerifyChain() error = %v, want IntegrityError", err)
	}
}

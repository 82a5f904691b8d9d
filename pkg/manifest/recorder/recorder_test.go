package recorder

import (
	"context"
	"sync"
	"testing"

	"mercator-hq/ganymede/pkg/calibration"
	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/manifest/storage"
	"mercator-hq/ganymede/pkg/veto"
)

func testInputs(unitID string) *manifest.EntryInputs {
	return &manifest.EntryInputs{
		UnitID:        unitID,
		Role:          "EXECUTOR",
		CohortVersion: "2026.08",
		WeightSetID:   "ws-executor-v3",
		Scores: map[string]float64{
			"@b": 0.92, "@chain": 0.88, "@q": 0.85, "@d": 0.90,
			"@p": 0.80, "@C": 0.75, "@u": 0.95, "@m": 0.85,
		},
	}
}

func TestRecorder_ChainsEntries(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	rec, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	score := 0.8869
	var entries []*manifest.Entry
	for _, unit := range []string{"unit-a", "unit-b", "unit-c"} {
		entry, err := rec.Record(ctx, testInputs(unit), &score, nil)
		if err != nil {
			t.Fatalf("Record(%s) failed: %v", unit, err)
		}
		entries = append(entries, entry)
	}

	if entries[0].PrevHash != manifest.GenesisHash {
		t.Errorf("First entry PrevHash = %q, want genesis", entries[0].PrevHash)
	}
	if entries[1].PrevHash != entries[0].EntryHash {
		t.Error("Second entry should chain to the first")
	}
	if entries[2].PrevHash != entries[1].EntryHash {
		t.Error("Third entry should chain to the second")
	}

	stored, err := st.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if err := manifest.VerifyChain(stored, nil); err != nil {
		t.Errorf("Recorded chain should verify: %v", err)
	}
}

func TestRecorder_ResumesFromStoredChain(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	first, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	score := 0.8
	tail, err := first.Record(ctx, testInputs("unit-a"), &score, nil)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	// A fresh recorder over the same storage must continue the chain, not
	// restart from genesis.
	second, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() on existing storage failed: %v", err)
	}
	next, err := second.Record(ctx, testInputs("unit-b"), &score, nil)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if next.PrevHash != tail.EntryHash {
		t.Errorf("Resumed chain PrevHash = %q, want %q", next.PrevHash, tail.EntryHash)
	}
}

func TestRecorder_VetoEntryHasNoScore(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	rec, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	result := &veto.Result{
		LayerID:     calibration.LayerUnits,
		Triggered:   true,
		Specificity: 0.97,
		Reason:      "unit verification failed on artifacts/report.pdf",
	}
	entry, err := rec.Record(ctx, testInputs("unit-a"), nil, result)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if entry.Score != nil {
		t.Errorf("Vetoed entry should carry no score, got %v", *entry.Score)
	}
	if entry.Veto == nil || entry.Veto.LayerID != calibration.LayerUnits {
		t.Errorf("Veto should be recorded, got %+v", entry.Veto)
	}
	if err := manifest.VerifyEntry(entry, nil); err != nil {
		t.Errorf("Vetoed entry should verify: %v", err)
	}
}

func TestRecorder_SignsEntries(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	signer, err := manifest.NewHMACSigner([]byte("recorder-test-key"))
	if err != nil {
		t.Fatalf("NewHMACSigner() failed: %v", err)
	}
	rec, err := NewRecorder(ctx, st, signer)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	score := 0.8869
	entry, err := rec.Record(ctx, testInputs("unit-a"), &score, nil)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if entry.Signature == "" {
		t.Fatal("Entry should be signed")
	}
	if err := manifest.VerifyEntry(entry, signer); err != nil {
		t.Errorf("Signed entry should verify: %v", err)
	}
}

func TestRecorder_ReturnsDetachedCopy(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	rec, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	score := 0.8
	entry, err := rec.Record(ctx, testInputs("unit-a"), &score, nil)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	entry.UnitID = "unit-tampered"

	stored, err := st.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if stored[0].UnitID != "unit-a" {
		t.Error("Mutating the returned entry must not reach the manifest")
	}
}

func TestRecorder_ConcurrentAppendsStayChained(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	defer st.Close()

	rec, err := NewRecorder(ctx, st, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			score := 0.5 + float64(i)/100
			if _, err := rec.Record(ctx, testInputs("unit-concurrent"), &score, nil); err != nil {
				t.Errorf("Record() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored, err := st.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(stored) != writers {
		t.Fatalf("Expected %d entries, got %d", writers, len(stored))
	}
	if err := manifest.VerifyChain(stored, nil); err != nil {
		t.Errorf("Chain should remain intact under concurrent appends: %v", err)
	}
}

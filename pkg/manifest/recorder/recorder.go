package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/manifest/storage"
	"mercator-hq/ganymede/pkg/veto"
)

// Recorder appends manifest entries. It is the only component that writes
// the manifest; construction resumes the hash chain from the last stored
// entry.
type Recorder struct {
	storage storage.Storage
	signer  manifest.Signer // nil means unsigned entries
	logger  *slog.Logger

	mu       sync.Mutex
	lastHash string

	// now is injectable for tests.
	now func() time.Time
}

// NewRecorder creates a recorder over the given storage. The signer may be
// nil, in which case entries are recorded unsigned.
func NewRecorder(ctx context.Context, st storage.Storage, signer manifest.Signer) (*Recorder, error) {
	last, err := st.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resume manifest chain: %w", err)
	}

	lastHash := manifest.GenesisHash
	if last != nil {
		lastHash = last.EntryHash
	}

	r := &Recorder{
		storage:  st,
		signer:   signer,
		logger:   slog.Default().With("component", "manifest.recorder"),
		lastHash: lastHash,
		now:      time.Now,
	}

	r.logger.Info("manifest recorder initialized",
		"resumed_from", lastHash,
		"signed", signer != nil,
	)
	return r, nil
}

// Record canonicalizes the decision inputs, builds the next chain entry,
// signs it when a signer is configured, and appends it. Appends are
// serialized; the returned entry is the caller's copy.
func (r *Recorder) Record(ctx context.Context, inputs *manifest.EntryInputs, score *float64, vetoResult *veto.Result) (*manifest.Entry, error) {
	inputsHash, err := manifest.HashInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to hash inputs for unit %q: %w", inputs.UnitID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &manifest.Entry{
		ID:          uuid.New().String(),
		UnitID:      inputs.UnitID,
		InputsHash:  inputsHash,
		WeightSetID: inputs.WeightSetID,
		Score:       copyFloat(score),
		Veto:        copyVeto(vetoResult),
		Timestamp:   r.now().UTC(),
		PrevHash:    r.lastHash,
	}

	entry.EntryHash, err = manifest.ComputeEntryHash(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to hash entry for unit %q: %w", inputs.UnitID, err)
	}

	if r.signer != nil {
		if err := manifest.SignEntry(entry, r.signer); err != nil {
			return nil, fmt.Errorf("failed to sign entry %s: %w", entry.ID, err)
		}
	}

	if err := r.storage.Append(ctx, entry); err != nil {
		return nil, err
	}
	r.lastHash = entry.EntryHash

	r.logger.Debug("manifest entry recorded",
		"entry_id", entry.ID,
		"unit_id", entry.UnitID,
		"weight_set_id", entry.WeightSetID,
		"vetoed", entry.Veto != nil,
	)

	entryCopy := *entry
	return &entryCopy, nil
}

// copyFloat copies an optional float.
func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// copyVeto copies an optional veto result.
func copyVeto(v *veto.Result) *veto.Result {
	if v == nil {
		return nil
	}
	vCopy := *v
	return &vCopy
}

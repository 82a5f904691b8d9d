package audit

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/manifest/storage"
)

// Report summarizes one verification pass over the manifest.
type Report struct {
	// Entries is the number of entries examined.
	Entries int

	// Vetoed is the number of examined entries carrying a veto.
	Vetoed int

	// Duration is how long the pass took.
	Duration time.Duration

	// Err is the first failure encountered, nil when the chain is intact.
	Err error
}

// Verifier re-verifies stored manifest entries.
type Verifier struct {
	storage  storage.Storage
	verifier manifest.Verifier // nil skips signature checks
	logger   *slog.Logger
}

// NewVerifier creates a verifier. The signature verifier may be nil when the
// manifest is unsigned.
func NewVerifier(st storage.Storage, sigVerifier manifest.Verifier) *Verifier {
	return &Verifier{
		storage:  st,
		verifier: sigVerifier,
		logger:   slog.Default().With("component", "manifest.audit"),
	}
}

// VerifyAll loads the full manifest in append order and checks every entry's
// hash, every signature, and the chain linkage between consecutive entries.
func (v *Verifier) VerifyAll(ctx context.Context) *Report {
	start := time.Now()

	entries, err := v.storage.List(ctx, nil)
	if err != nil {
		return &Report{Duration: time.Since(start), Err: err}
	}

	report := &Report{Entries: len(entries), Duration: 0}
	for _, entry := range entries {
		if entry.Veto != nil {
			report.Vetoed++
		}
	}

	report.Err = manifest.VerifyChain(entries, v.verifier)
	report.Duration = time.Since(start)

	if report.Err != nil {
		v.logger.Error("manifest verification failed",
			"entries", report.Entries,
			"error", report.Err,
		)
	} else {
		v.logger.Info("manifest verified",
			"entries", report.Entries,
			"vetoed", report.Vetoed,
			"duration_ms", report.Duration.Milliseconds(),
		)
	}
	return report
}

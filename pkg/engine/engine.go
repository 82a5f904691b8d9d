package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/calibration/loader"
	"mercator-hq/ganymede/pkg/fusion"
	"mercator-hq/ganymede/pkg/governor"
	"mercator-hq/ganymede/pkg/manifest"
	"mercator-hq/ganymede/pkg/manifest/recorder"
	"mercator-hq/ganymede/pkg/veto"
)

// Request is one unit evaluation: the unit's identity, the role it is scored
// under, its full layer score vector, and any veto verdicts already raised.
type Request struct {
	UnitID string
	Role   string
	Scores map[string]float64
	Vetoes []veto.Result
}

// Outcome is the engine's decision for one unit. Exactly one of Score and
// Veto is set: a winning veto short-circuits fusion.
type Outcome struct {
	UnitID string
	Role   fusion.Role
	Score  *float64
	Veto   *veto.Result
	Entry  *manifest.Entry
}

// Vetoed reports whether the unit was vetoed.
func (o *Outcome) Vetoed() bool { return o.Veto != nil }

// Engine runs the per-unit calibration pipeline.
type Engine struct {
	bundle   *loader.Bundle
	governor *governor.Governor
	cascade  *veto.Coordinator
	recorder *recorder.Recorder
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetricsRegistry registers engine metrics against a specific registry
// instead of the default one.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = NewMetrics(reg) }
}

// New builds an engine over a loaded calibration bundle. The governor's
// structural gates run here: a cyclic or tier-inverted dependency graph
// prevents construction entirely, so readiness implies certification.
func New(bundle *loader.Bundle, gov *governor.Governor, rec *recorder.Recorder, opts ...Option) (*Engine, error) {
	if bundle == nil {
		return nil, fmt.Errorf("engine requires a calibration bundle")
	}
	if gov == nil {
		return nil, fmt.Errorf("engine requires a governor")
	}
	if rec == nil {
		return nil, fmt.Errorf("engine requires a manifest recorder")
	}

	if err := gov.Govern(bundle.Graph); err != nil {
		return nil, fmt.Errorf("calibration cohort %s rejected: %w", bundle.CohortVersion, err)
	}

	e := &Engine{
		bundle:   bundle,
		governor: gov,
		cascade:  veto.NewCoordinator(),
		recorder: rec,
		logger:   slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}

	e.logger.Info("engine ready",
		"cohort_version", bundle.CohortVersion,
		"weight_sets", len(bundle.WeightSets),
		"graph_nodes", len(bundle.Graph.Nodes()),
	)
	return e, nil
}

// CohortVersion returns the loaded cohort tag.
func (e *Engine) CohortVersion() string { return e.bundle.CohortVersion }

// Evaluate runs the pipeline for one unit: validate the request, run the
// veto cascade, fuse the scores when no veto wins, and append the decision to
// the manifest. Invalid input is a per-call typed rejection; it never
// degrades the engine.
func (e *Engine) Evaluate(ctx context.Context, req *Request) (*Outcome, error) {
	start := time.Now()

	role, err := fusion.ParseRole(req.Role)
	if err != nil {
		e.metrics.RecordEvaluation(req.Role, "rejected", time.Since(start).Seconds())
		return nil, err
	}

	weights, err := e.bundle.WeightSet(role)
	if err != nil {
		e.metrics.RecordEvaluation(role.String(), "rejected", time.Since(start).Seconds())
		return nil, err
	}

	scores, err := fusion.ParseScoreVector(req.Scores)
	if err != nil {
		e.metrics.RecordEvaluation(role.String(), "rejected", time.Since(start).Seconds())
		return nil, err
	}

	inputs := &manifest.EntryInputs{
		UnitID:        req.UnitID,
		Role:          role.String(),
		CohortVersion: e.bundle.CohortVersion,
		WeightSetID:   weights.ID(),
		Scores:        scores.ToMap(),
		Vetoes:        req.Vetoes,
	}

	outcome := &Outcome{UnitID: req.UnitID, Role: role}

	winner, err := e.cascade.Cascade(req.Vetoes)
	if err != nil {
		e.metrics.RecordEvaluation(role.String(), "rejected", time.Since(start).Seconds())
		return nil, err
	}
	if winner != nil {
		outcome.Veto = winner

		entry, err := e.recorder.Record(ctx, inputs, nil, winner)
		if err != nil {
			return nil, fmt.Errorf("failed to record vetoed decision for unit %q: %w", req.UnitID, err)
		}
		outcome.Entry = entry

		e.metrics.RecordEvaluation(role.String(), "vetoed", time.Since(start).Seconds())
		e.metrics.RecordVeto(string(winner.LayerID))
		e.logger.Info("unit vetoed",
			"unit_id", req.UnitID,
			"role", role.String(),
			"layer", string(winner.LayerID),
			"specificity", winner.Specificity,
			"reason", winner.Reason,
		)
		return outcome, nil
	}

	score, err := fusion.Evaluate(scores, weights)
	if err != nil {
		e.metrics.RecordEvaluation(role.String(), "rejected", time.Since(start).Seconds())
		return nil, err
	}
	outcome.Score = &score

	entry, err := e.recorder.Record(ctx, inputs, &score, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to record decision for unit %q: %w", req.UnitID, err)
	}
	outcome.Entry = entry

	e.metrics.RecordEvaluation(role.String(), "fused", time.Since(start).Seconds())
	e.metrics.RecordScore(role.String(), score)
	e.logger.Debug("unit evaluated",
		"unit_id", req.UnitID,
		"role", role.String(),
		"score", score,
		"entry_id", entry.ID,
	)
	return outcome, nil
}

// CertifyProduct runs a bounded multiplicative fusion step through the
// governor and counts clamps for observability.
func (e *Engine) CertifyProduct(ctx context.Context, stage string, factors ...float64) float64 {
	raw := 1.0
	for _, f := range factors {
		raw *= f
	}

	certified := e.governor.CertifyProduct(ctx, stage, factors...)
	if certified != raw {
		e.metrics.RecordClamp(stage)
	}
	return certified
}

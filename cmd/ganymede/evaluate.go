package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/ganymede/pkg/calibration"
	"mercator-hq/ganymede/pkg/calibration/loader"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/engine"
	"mercator-hq/ganymede/pkg/governor"
	"mercator-hq/ganymede/pkg/manifest/recorder"
	"mercator-hq/ganymede/pkg/veto"
)

var evaluateFlags struct {
	unitID string
	role   string
	scores string
}

// requestDocument is the YAML shape accepted by --scores.
type requestDocument struct {
	UnitID string             `yaml:"unit_id"`
	Role   string             `yaml:"role"`
	Scores map[string]float64 `yaml:"scores"`
	Vetoes []struct {
		Layer       string  `yaml:"layer"`
		Triggered   bool    `yaml:"triggered"`
		Specificity float64 `yaml:"specificity"`
		Reason      string  `yaml:"reason"`
	} `yaml:"vetoes"`
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a unit against the loaded calibration cohort",
	Long: `Run the full evaluation pipeline for one unit.

The pipeline validates the score vector, runs the veto cascade, fuses the
surviving scores with the role's weight set, and appends the decision to the
calibration manifest.

The --scores file is a YAML document:

  unit_id: unit-7f3a
  role: EXECUTOR
  scores:
    "@b": 0.92
    "@chain": 0.88
    "@q": 0.95
    "@d": 0.90
    "@p": 0.85
    "@C": 0.87
    "@u": 0.93
    "@m": 0.89
  vetoes:
    - layer: "@chain"
      triggered: false
      specificity: 0.80
      reason: chain intact

Examples:
  # Evaluate from a request file
  ganymede evaluate --scores ./request.yaml

  # Override the unit and role on the command line
  ganymede evaluate --scores ./request.yaml --unit unit-9 --role AUDITOR`,
	RunE: evaluateUnit,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.scores, "scores", "", "YAML request file (required)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.unitID, "unit", "", "unit identifier (overrides the request file)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.role, "role", "", "role token (overrides the request file)")
	evaluateCmd.MarkFlagRequired("scores")
}

func evaluateUnit(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	data, err := os.ReadFile(evaluateFlags.scores)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}
	var doc requestDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed request file %s: %w", evaluateFlags.scores, err)
	}
	if evaluateFlags.unitID != "" {
		doc.UnitID = evaluateFlags.unitID
	}
	if evaluateFlags.role != "" {
		doc.Role = evaluateFlags.role
	}
	if doc.UnitID == "" {
		return fmt.Errorf("a unit identifier is required (unit_id in the request file or --unit)")
	}

	vetoes := make([]veto.Result, 0, len(doc.Vetoes))
	for _, v := range doc.Vetoes {
		if !calibration.IsValidLayer(v.Layer) {
			return fmt.Errorf("invalid veto layer %q in request file", v.Layer)
		}
		vetoes = append(vetoes, veto.Result{
			LayerID:     calibration.LayerID(v.Layer),
			Triggered:   v.Triggered,
			Specificity: v.Specificity,
			Reason:      v.Reason,
		})
	}

	bundle, err := loader.NewLoader().Load(cfg.Calibration.Path)
	if err != nil {
		return fmt.Errorf("failed to load calibration document: %w", err)
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	gov, err := governor.New(bundle.ProductBounds, jnl)
	if err != nil {
		return err
	}

	store, err := openManifestStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	signer, err := buildSigner(cfg)
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()

	rec, err := recorder.NewRecorder(ctx, store, signer)
	if err != nil {
		return err
	}

	eng, err := engine.New(bundle, gov, rec)
	if err != nil {
		return err
	}

	outcome, err := eng.Evaluate(ctx, &engine.Request{
		UnitID: doc.UnitID,
		Role:   doc.Role,
		Scores: doc.Scores,
		Vetoes: vetoes,
	})
	if err != nil {
		return fmt.Errorf("evaluation rejected: %w", err)
	}

	fmt.Printf("Unit:           %s\n", outcome.UnitID)
	fmt.Printf("Role:           %s\n", outcome.Role)
	fmt.Printf("Cohort version: %s\n", bundle.CohortVersion)
	if outcome.Vetoed() {
		fmt.Printf("Decision:       VETOED by %s (specificity %.2f)\n", outcome.Veto.LayerID, outcome.Veto.Specificity)
		fmt.Printf("Reason:         %s\n", outcome.Veto.Reason)
	} else {
		fmt.Printf("Decision:       fused score %.4f\n", *outcome.Score)
	}
	fmt.Printf("Manifest entry: %s\n", outcome.Entry.ID)
	fmt.Printf("Entry hash:     %s\n", outcome.Entry.EntryHash)

	return nil
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/calibration/loader"
	"mercator-hq/ganymede/pkg/calibration/monitor"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/governor"
	"mercator-hq/ganymede/pkg/governor/journal"
)

var validateFlags struct {
	calibration string
	watch       bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a calibration document",
	Long: `Parse a calibration document and run the dependency governance gates.

Validation covers:
  - Layer interval, parameter and provenance constraints
  - Weight set normalization per role
  - Dependency graph cycle detection
  - Evidence tier inversion detection

A document that passes validate is safe to serve evaluations from.

Examples:
  # Validate the document from the config file
  ganymede validate

  # Validate a specific document
  ganymede validate --calibration ./calibration.yaml

  # Keep watching and re-validate whenever the document changes on disk
  ganymede validate --watch`,
	RunE: validateCalibration,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.calibration, "calibration", "", "calibration document path (uses config if not specified)")
	validateCmd.Flags().BoolVar(&validateFlags.watch, "watch", false, "re-validate on file change (also enabled by calibration.monitor)")
}

func validateCalibration(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	path := validateFlags.calibration
	if path == "" {
		path = cfg.Calibration.Path
	}

	if err := runValidation(path); err != nil {
		return err
	}
	if !validateFlags.watch && !cfg.Calibration.Monitor {
		return nil
	}
	return watchAndRevalidate(cfg, path)
}

// runValidation loads one document and runs the governor's gates against it.
func runValidation(path string) error {
	bundle, err := loader.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("calibration document is invalid:\n%w", err)
	}

	gov, err := governor.New(bundle.ProductBounds, journal.NewMemoryJournal())
	if err != nil {
		return err
	}
	if err := gov.Govern(bundle.Graph); err != nil {
		return fmt.Errorf("dependency graph rejected: %w", err)
	}

	fmt.Printf("Calibration document: %s\n", path)
	fmt.Printf("Cohort version:       %s\n", bundle.CohortVersion)
	fmt.Println()

	tokens := make([]string, 0, len(bundle.Layers))
	for token := range bundle.Layers {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	fmt.Printf("Layers (%d):\n", len(tokens))
	for _, token := range tokens {
		layer := bundle.Layers[token]
		fmt.Printf("  %-7s %-12s %s\n", token, layer.Version(), layer.ContentHash()[:12])
	}
	fmt.Println()

	roles := make([]string, 0, len(bundle.WeightSets))
	for role, ws := range bundle.WeightSets {
		roles = append(roles, fmt.Sprintf("%-9s %s", role.String(), ws.ID()))
	}
	sort.Strings(roles)
	fmt.Printf("Weight sets (%d):\n", len(roles))
	for _, role := range roles {
		fmt.Printf("  %s\n", role)
	}
	fmt.Println()

	fmt.Printf("Dependency graph: %d nodes, %d edges\n", len(bundle.Graph.Nodes()), len(bundle.Graph.Edges()))
	fmt.Printf("Product bounds:   [%g, %g]\n", bundle.ProductBounds.Min, bundle.ProductBounds.Max)
	fmt.Println()
	fmt.Println("✓ Document is valid")

	return nil
}

// watchAndRevalidate blocks, re-running validation whenever the document
// changes on disk, until interrupted. The metrics endpoint is served while
// watching so the staleness gauge is scrapeable.
func watchAndRevalidate(cfg *config.Config, path string) error {
	revalidate := make(chan string, 1)
	mon, err := monitor.New(path, monitor.WithDriftCallback(func(p string) {
		select {
		case revalidate <- p:
		default:
		}
	}))
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	if err := startMetricsServer(ctx, cfg); err != nil {
		return err
	}
	watchDone := make(chan error, 1)
	go func() { watchDone <- mon.Watch(ctx) }()

	fmt.Printf("\nWatching %s for changes, Ctrl-C to stop\n", path)

	for {
		select {
		case <-ctx.Done():
			mon.Stop()
			return <-watchDone
		case err := <-watchDone:
			return err
		case <-revalidate:
			fmt.Printf("\n--- document changed, re-validating ---\n\n")
			if err := runValidation(path); err != nil {
				fmt.Println(err)
			}
		}
	}
}

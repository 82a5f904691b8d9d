package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/manifest/audit"
	"mercator-hq/ganymede/pkg/manifest/storage"
)

var manifestQueryFlags struct {
	unitID      string
	weightSetID string
	vetoedOnly  bool
	since       string
	limit       int
	offset      int
	format      string
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect the calibration manifest",
	Long: `Query and verify the append-only calibration manifest.

Every evaluation appends one entry to the manifest: the canonical hash of its
inputs, the fused score or winning veto, and a hash link to the previous
entry. The query subcommand lists entries; the verify subcommand replays the
whole chain and checks every hash and signature.`,
}

var manifestQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List manifest entries",
	Long: `List manifest entries in append order.

Examples:
  # Last ten decisions for one unit
  ganymede manifest query --unit unit-7f3a --limit 10

  # All vetoed decisions since a point in time
  ganymede manifest query --vetoed --since 2026-08-01T00:00:00Z

  # Page through decisions under one weight set
  ganymede manifest query --weight-set ws-executor-v3 --limit 50 --offset 100`,
	RunE: queryManifest,
}

var manifestVerifyFlags struct {
	follow bool
}

var manifestVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the manifest hash chain and signatures",
	Long: `Replay the full manifest and verify its integrity.

Verification recomputes every entry hash, follows every prev_hash link back
to genesis, and checks signatures when the config declares a signing scheme.

Examples:
  # Verify once and exit
  ganymede manifest verify

  # Keep re-verifying on the configured cron schedule until interrupted
  ganymede manifest verify --follow`,
	RunE: verifyManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestQueryCmd)
	manifestCmd.AddCommand(manifestVerifyCmd)

	manifestQueryCmd.Flags().StringVar(&manifestQueryFlags.unitID, "unit", "", "filter by unit identifier")
	manifestQueryCmd.Flags().StringVar(&manifestQueryFlags.weightSetID, "weight-set", "", "filter by weight set identifier")
	manifestQueryCmd.Flags().BoolVar(&manifestQueryFlags.vetoedOnly, "vetoed", false, "only vetoed decisions")
	manifestQueryCmd.Flags().StringVar(&manifestQueryFlags.since, "since", "", "only entries at or after this RFC3339 timestamp")
	manifestQueryCmd.Flags().IntVar(&manifestQueryFlags.limit, "limit", 20, "maximum entries to list (0 for all)")
	manifestQueryCmd.Flags().IntVar(&manifestQueryFlags.offset, "offset", 0, "entries to skip")
	manifestQueryCmd.Flags().StringVar(&manifestQueryFlags.format, "format", "text", "output format: text, json")

	manifestVerifyCmd.Flags().BoolVar(&manifestVerifyFlags.follow, "follow", false, "re-verify on manifest.verify_schedule until interrupted")
}

func queryManifest(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	store, err := openManifestStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	query := &storage.Query{
		UnitID:      manifestQueryFlags.unitID,
		WeightSetID: manifestQueryFlags.weightSetID,
		VetoedOnly:  manifestQueryFlags.vetoedOnly,
		Limit:       manifestQueryFlags.limit,
		Offset:      manifestQueryFlags.offset,
	}
	if manifestQueryFlags.since != "" {
		since, err := time.Parse(time.RFC3339, manifestQueryFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since timestamp: %w", err)
		}
		query.StartTime = &since
	}

	ctx := cli.SetupSignalHandler()

	total, err := store.Count(ctx, query)
	if err != nil {
		return cli.NewCommandError("manifest query", err)
	}
	entries, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("manifest query", err)
	}

	if manifestQueryFlags.format == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Println("No manifest entries found.")
		return nil
	}

	fmt.Printf("%-28s  %-20s  %-18s  %-10s  %s\n", "TIMESTAMP", "UNIT", "WEIGHT SET", "DECISION", "ENTRY HASH")
	for _, entry := range entries {
		decision := "vetoed"
		if entry.Score != nil {
			decision = fmt.Sprintf("%.4f", *entry.Score)
		}
		fmt.Printf("%-28s  %-20s  %-18s  %-10s  %s\n",
			entry.Timestamp.Format(time.RFC3339),
			entry.UnitID,
			entry.WeightSetID,
			decision,
			entry.EntryHash[:12],
		)
	}
	fmt.Printf("\n%d of %d matching entries\n", len(entries), total)

	return nil
}

func verifyManifest(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	store, err := openManifestStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sigVerifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	verifier := audit.NewVerifier(store, sigVerifier)

	report := verifier.VerifyAll(ctx)
	if report.Err != nil {
		return cli.NewCommandError("manifest verify", report.Err)
	}

	fmt.Printf("Entries verified: %d\n", report.Entries)
	fmt.Printf("Vetoed entries:   %d\n", report.Vetoed)
	fmt.Printf("Duration:         %s\n", report.Duration)
	fmt.Println()
	fmt.Println("✓ Manifest chain is intact")

	if !manifestVerifyFlags.follow {
		return nil
	}

	if cfg.Manifest.VerifySchedule == "" {
		return cli.NewConfigError("manifest.verify_schedule", "--follow requires a cron schedule")
	}
	if err := startMetricsServer(ctx, cfg); err != nil {
		return err
	}
	scheduler := audit.NewScheduler(verifier, cfg.Manifest.VerifySchedule)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	if next := scheduler.NextRun(); next != nil {
		fmt.Printf("\nRe-verifying on schedule %q (next run %s), Ctrl-C to stop\n",
			cfg.Manifest.VerifySchedule, next.Format(time.RFC3339))
	}
	<-ctx.Done()
	scheduler.Stop()

	return nil
}

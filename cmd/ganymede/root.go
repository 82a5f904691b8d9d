package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - calibration fusion and interaction governance engine",
	Long: `Ganymede is a calibration fusion and interaction governance engine.

It provides:
  - Choquet 2-additive fusion of the eight layer scores into one calibrated score
  - Dependency-graph governance: cycle and tier-inversion gates at load time
  - Bounded multiplicative fusion with journaled clamp events
  - A deterministic, specificity-ordered veto cascade
  - An append-only, hash-chained, signed calibration manifest for auditors`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

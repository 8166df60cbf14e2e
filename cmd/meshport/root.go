package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/config"
	"partworks/meshport/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meshport",
	Short: "Meshport - change-aware CAD mesh export",
	Long: `Meshport exports CAD design components to mesh files, but only the ones
whose geometry actually changed.

A per-folder manifest names the components, their output files, and their
orientation; a JSON sidecar ledger remembers what each file was exported
from. Together they make a mesh folder reproducible and diff-friendly:

  - Unchanged components are skipped, so timestamps and git history stay
    honest
  - Renamed or re-counted components are re-exported under their new name
  - The ledger travels with the folder through version control`,
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
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "meshport.yaml", "tool config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadToolConfig loads the tool configuration and builds the logger every
// subcommand shares. --verbose forces debug logging regardless of config.
func loadToolConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

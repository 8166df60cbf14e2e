package main

import (
	"os"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/manifest"
)

var planFlags struct {
	manifestPath string
	designPath   string
	outputDir    string
	jsonOutput   bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what an export run would do",
	Long: `Plan an export run without writing any files.

The plan compares the design's current fingerprints against the version
ledger and prints which files would be exported and why, plus any
warnings (components missing from the design, stale files left behind by
count changes).

Examples:
  meshport plan --design design.json
  meshport plan --design design.json --json`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFlags.manifestPath, "manifest", "m", manifest.DefaultFilename, "export manifest path")
	planCmd.Flags().StringVarP(&planFlags.designPath, "design", "d", "", "design description path (required)")
	planCmd.Flags().StringVarP(&planFlags.outputDir, "output", "o", "", "export folder (overrides config)")
	planCmd.Flags().BoolVar(&planFlags.jsonOutput, "json", false, "print the plan as JSON")
	planCmd.MarkFlagRequired("design")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadToolConfig()
	if err != nil {
		return cli.NewCommandError("plan", err)
	}

	env, err := prepareRun(cfg, logger, planFlags.manifestPath, planFlags.designPath, planFlags.outputDir)
	if err != nil {
		return cli.NewCommandError("plan", err)
	}

	actions, warnings, err := buildActions(env)
	if err != nil {
		return cli.NewCommandError("plan", err)
	}

	if planFlags.jsonOutput {
		if err := cli.RenderPlanJSON(os.Stdout, actions, warnings); err != nil {
			return cli.NewCommandError("plan", err)
		}
		return nil
	}
	if err := cli.RenderPlan(os.Stdout, actions, warnings); err != nil {
		return cli.NewCommandError("plan", err)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/manifest"
)

var initFlags struct {
	manifestPath string
	designPath   string
	force        bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a starter manifest from a design",
	Long: `Generate a starter export manifest listing every component in the design.

Each component gets a slugified output name, the default up axis, and no
pinned instance count. Edit the result to drop components you don't want
exported or to adjust names and orientation.

Examples:
  meshport init --design design.json
  meshport init --design design.json --manifest exports/meshexport.json`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initFlags.manifestPath, "manifest", "m", manifest.DefaultFilename, "manifest path to write")
	initCmd.Flags().StringVarP(&initFlags.designPath, "design", "d", "", "design description path (required)")
	initCmd.Flags().BoolVarP(&initFlags.force, "force", "f", false, "overwrite an existing manifest")
	initCmd.MarkFlagRequired("design")
}

func runInit(cmd *cobra.Command, args []string) error {
	h, err := host.LoadScripted(initFlags.designPath)
	if err != nil {
		return cli.NewCommandError("init", err)
	}

	names := h.ComponentNames()
	if len(names) == 0 {
		return cli.NewCommandError("init", fmt.Errorf("design %q has no components", initFlags.designPath))
	}

	if !initFlags.force {
		if _, err := os.Stat(initFlags.manifestPath); err == nil {
			return cli.NewCommandError("init",
				fmt.Errorf("manifest %q already exists (use --force to overwrite)", initFlags.manifestPath))
		}
	}

	m := manifest.Generate(names)
	if err := m.Save(initFlags.manifestPath); err != nil {
		return cli.NewCommandError("init", err)
	}

	fmt.Printf("wrote %s with %d component(s)\n", initFlags.manifestPath, len(names))
	return nil
}

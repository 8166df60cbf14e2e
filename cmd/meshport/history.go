package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/history"
)

var historyFlags struct {
	limit int
	runID string
	path  string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past export runs",
	Long: `Show recorded export runs, newest first.

Examples:
  # Recent runs
  meshport history

  # Per-file detail of one run
  meshport history --run 4f1c9e2a-...

  # Every run that touched one output file
  meshport history --path case_x1.stl`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum runs to show")
	historyCmd.Flags().StringVar(&historyFlags.runID, "run", "", "show the files of one run")
	historyCmd.Flags().StringVar(&historyFlags.path, "path", "", "show the history of one output file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadToolConfig()
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	if !cfg.History.Enabled {
		return cli.NewCommandError("history", fmt.Errorf("history is disabled in the configuration"))
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	ctx := context.Background()

	switch {
	case historyFlags.runID != "":
		files, err := store.RunFiles(ctx, historyFlags.runID)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		if len(files) == 0 {
			fmt.Printf("no files recorded for run %s\n", historyFlags.runID)
			return nil
		}
		fmt.Printf("run %s:\n", historyFlags.runID)
		return cli.RenderRunFiles(os.Stdout, files)

	case historyFlags.path != "":
		files, err := store.PathHistory(ctx, historyFlags.path, historyFlags.limit)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		if len(files) == 0 {
			fmt.Printf("no history for %s\n", historyFlags.path)
			return nil
		}
		fmt.Printf("%s:\n", historyFlags.path)
		return cli.RenderRunFiles(os.Stdout, files)

	default:
		runs, err := store.RecentRuns(ctx, historyFlags.limit)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		return cli.RenderRuns(os.Stdout, runs)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/ledger"
)

var ledgerFlags struct {
	outputDir string
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the version ledger",
	Long: `Print the version ledger: every tracked file, the fingerprint it was
exported from, and when.

Examples:
  meshport ledger
  meshport ledger prune`,
	RunE: runLedgerShow,
}

var ledgerPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop ledger entries whose files no longer exist",
	Long: `Drop ledger entries whose mesh files are gone from the export folder.

The export engine never deletes files or entries on its own; prune is the
explicit cleanup for folders where meshes were removed by hand.`,
	RunE: runLedgerPrune,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerPruneCmd)

	ledgerCmd.PersistentFlags().StringVarP(&ledgerFlags.outputDir, "output", "o", "", "export folder (overrides config)")
}

// openLedger loads the ledger for the configured export folder.
func openLedger() (*ledger.Ledger, string, error) {
	cfg, _, err := loadToolConfig()
	if err != nil {
		return nil, "", err
	}

	outputDir := ledgerFlags.outputDir
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}
	ledgerPath := filepath.Join(outputDir, cfg.Ledger.Filename)

	led, err := ledger.Load(ledgerPath)
	if err != nil {
		return nil, "", err
	}
	return led, ledgerPath, nil
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	led, ledgerPath, err := openLedger()
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}

	if led.Len() == 0 {
		fmt.Printf("ledger %s is empty\n", ledgerPath)
		return nil
	}

	for _, path := range led.Paths() {
		entry, _ := led.Get(path)
		fmt.Printf("%s\n  component %q, %d instance(s), fingerprint %s\n  exported %s from document %s\n",
			path, entry.Component, entry.InstanceCount, shortFingerprint(entry.Fingerprint),
			entry.ExportedAt.Local().Format("2006-01-02 15:04:05"), entry.SourceDocumentVersion)
	}
	return nil
}

func runLedgerPrune(cmd *cobra.Command, args []string) error {
	led, ledgerPath, err := openLedger()
	if err != nil {
		return cli.NewCommandError("ledger", err)
	}

	outputDir := filepath.Dir(ledgerPath)
	var pruned []string
	for _, path := range led.Paths() {
		onDisk := filepath.Join(outputDir, filepath.FromSlash(path))
		if _, err := os.Stat(onDisk); os.IsNotExist(err) {
			led.Delete(path)
			pruned = append(pruned, path)
		}
	}

	if len(pruned) == 0 {
		fmt.Println("nothing to prune")
		return nil
	}

	if err := led.Save(ledgerPath); err != nil {
		return cli.NewCommandError("ledger", err)
	}

	for _, path := range pruned {
		fmt.Printf("pruned %s\n", path)
	}
	fmt.Printf("%d entry(ies) pruned\n", len(pruned))
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

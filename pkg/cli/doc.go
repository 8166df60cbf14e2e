/*
Package cli provides command-line utilities for the meshport command.

It renders run reports and dry-run plans as text or JSON, reports per-file
progress for long export runs, and wires SIGINT/SIGTERM into context
cancellation so an interrupted run stops between files instead of mid-write.

Output rendering:

	if err := cli.RenderReport(os.Stdout, report); err != nil {
		return err
	}

Signal handling:

	ctx := cli.SetupSignalHandler()
	report, err := executor.Run(ctx, actions, warnings)
*/
package cli

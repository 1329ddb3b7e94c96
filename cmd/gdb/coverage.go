package main

import (
	"context"

	"github.com/gamedex/gdb/internal/ioreport"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCoverageCmd returns the coverage command.
func getCoverageCmd() *cobra.Command {
	var output string

	coverageCmd := &cobra.Command{
		Use:   "coverage",
		Short: "Export the SQLite coverage artifact",
		Long: `Export the coverage report as a standalone SQLite file.

The artifact holds per-platform roster counts and per-target fill
rates, so ingest quality can be inspected without access to the
pipeline database.

Examples:
  gdb coverage
  gdb coverage --output /tmp/coverage.sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.OutputFile = output
			ctx := context.Background()

			op, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer op.Close()

			reporter := ioreport.New(cfg, op)
			if err := reporter.ExportCoverage(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}

	coverageCmd.Flags().StringVarP(&output, "output", "o",
		"coverage.sqlite", "destination path for the artifact")

	return coverageCmd
}

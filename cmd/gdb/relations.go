package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gamedex/gdb/internal/ionormalize"
	"github.com/gamedex/gdb/internal/iowrite"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRelationsCmd returns the relations command.
func getRelationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "Re-derive cross-game relations only",
		Long: `Re-derive cross-game relation rows from cached documents.

During the first normalization pass many relation targets do not exist
yet, so their rows are dropped as dangling. Running this stage after
the full ingest re-derives only the relation rows and lands the ones
whose targets exist now. Other derived rows are not touched.

Examples:
  gdb relations
  gdb relations --limit 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd)

			ctx, stop := signal.NotifyContext(
				context.Background(), os.Interrupt)
			defer stop()

			op, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer op.Close()

			writer := iowrite.New(cfg, op)
			normalizer := ionormalize.New(cfg, op, writer)
			if err := normalizer.HydrateRelations(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

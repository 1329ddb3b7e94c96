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

// getNormalizeCmd returns the normalize command.
func getNormalizeCmd() *cobra.Command {
	var includeNiche bool

	normalizeCmd := &cobra.Command{
		Use:   "normalize",
		Short: "Derive relational rows from cached claim documents",
		Long: `Normalize cached entity documents into relational rows.

For each game the engine re-derives genre, company, platform, website,
image, external-id, age-rating, and relation rows from the cached
claim document, plus rank-resolved scalars (release date, cover). The
writer replaces the game's previous claim-derived rows in one
transaction, so the operation is idempotent.

Only games whose cached document is newer than their last
normalization are processed; --all reprocesses everything. The niche
property tier is off by default and enabled with --include-niche.

Examples:
  gdb normalize
  gdb normalize --all
  gdb normalize --include-niche --limit 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd)
			cfg.IncludeNiche = includeNiche

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
			if err := normalizer.Normalize(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}

	normalizeCmd.Flags().BoolVar(&includeNiche, "include-niche", false,
		"also normalize niche-tier registry properties")
	addRunFlags(normalizeCmd)

	return normalizeCmd
}

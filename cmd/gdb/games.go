package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gamedex/gdb/internal/ioenrich"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getGamesCmd returns the games command group.
func getGamesCmd() *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "Manage game rows",
	}

	gamesCmd.AddCommand(getGamesEnrichCmd())

	return gamesCmd
}

func getGamesEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Hydrate game entity documents through the cache",
		Long: `Hydrate entity documents for games found by the roster crawl.

Documents go through the revision-aware cache: a lightweight metadata
probe first, the heavyweight document fetch only for entities whose
version marker changed. Re-running after an interrupt continues with
the games that were not stamped yet.

Examples:
  gdb games enrich
  gdb games enrich --limit 5000
  gdb games enrich --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd)

			ctx, stop := signal.NotifyContext(
				context.Background(), os.Interrupt)
			defer stop()

			fetch, err := newFetchStack()
			if err != nil {
				return err
			}
			op, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer op.Close()

			enricher := ioenrich.New(cfg, op,
				fetch.entityCache(op), fetch.pageCache(op), fetch.stats)
			if err := enricher.EnrichGames(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

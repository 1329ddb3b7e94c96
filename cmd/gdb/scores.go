package main

import (
	"context"

	"github.com/gamedex/gdb/internal/ioreport"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getScoresCmd returns the scores command.
func getScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Recompute popularity and coverage scores",
		Long: `Recompute popularity and coverage scores for all games.

Scores are a pure function of stored rows, so this stage can run any
time after normalization and is always safe to repeat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			op, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer op.Close()

			reporter := ioreport.New(cfg, op)
			if err := reporter.RecomputeScores(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
}

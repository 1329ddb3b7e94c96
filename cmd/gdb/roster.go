package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gamedex/gdb/internal/iocrawl"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRosterCmd returns the roster command.
func getRosterCmd() *cobra.Command {
	var platformQID string
	var reset bool

	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Crawl per-platform game rosters",
		Long: `Crawl the game rosters of every major platform.

The crawl pages through each platform's roster in a stable identifier
order and commits each page together with its resume cursor. An
interrupted crawl resumes at the last committed page; completed
rosters are skipped until --all forces a recrawl from their cursors.

The cursor only moves backwards with an explicit --reset, which
requires --platform.

Examples:
  gdb roster
  gdb roster --platform Q19610114
  gdb roster --platform Q19610114 --reset
  gdb roster --limit 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd)
			cfg.PlatformQID = platformQID
			cfg.ResetCursor = reset
			return runRoster(cmd)
		},
	}

	rosterCmd.Flags().StringVarP(&platformQID, "platform", "p", "",
		"restrict the crawl to one platform identifier")
	rosterCmd.Flags().BoolVar(&reset, "reset", false,
		"clear the platform's cursor first (requires --platform)")
	addRunFlags(rosterCmd)

	return rosterCmd
}

func runRoster(_ *cobra.Command) error {
	if cfg.ResetCursor && cfg.PlatformQID == "" {
		gn.Warn("--reset requires --platform; refusing to reset " +
			"every cursor at once")
		return nil
	}

	// Interrupts cancel cleanly between pages; the committed cursor
	// keeps the progress.
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

	crawler := iocrawl.New(cfg, op, fetch.query, fetch.stats)

	if cfg.ResetCursor {
		if err := crawler.ResetCursor(ctx, cfg.PlatformQID); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	if err := crawler.CrawlRosters(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}

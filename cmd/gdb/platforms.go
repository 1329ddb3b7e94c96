package main

import (
	"context"

	"github.com/gamedex/gdb/internal/iocrawl"
	"github.com/gamedex/gdb/internal/ioenrich"
	"github.com/gamedex/gdb/internal/iofetch"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getPlatformsCmd returns the platforms command group.
func getPlatformsCmd() *cobra.Command {
	platformsCmd := &cobra.Command{
		Use:   "platforms",
		Short: "Manage the platforms dimension",
		Long: `Manage the platforms dimension in three independent steps.

  discover  query the knowledge graph for all platform items
  major     mark the curated major-platform subset for roster crawling
  enrich    fill platform fields from entity documents

Examples:
  gdb platforms discover
  gdb platforms major
  gdb platforms enrich`,
	}

	platformsCmd.AddCommand(getPlatformsDiscoverCmd())
	platformsCmd.AddCommand(getPlatformsMajorCmd())
	platformsCmd.AddCommand(getPlatformsEnrichCmd())

	return platformsCmd
}

func getPlatformsDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Discover platform items in the knowledge graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

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
			if err := crawler.DiscoverPlatforms(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
}

func getPlatformsMajorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "major",
		Short: "Mark the curated major-platform subset",
		Long: `Mark the curated major platforms that get roster crawls.

The subset is data shipped with the binary, not a heuristic. Platforms
that left the curated list lose the flag; their crawled rosters stay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			op, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer op.Close()

			crawler := iocrawl.New(cfg, op, nil, iofetch.NewStats())
			if err := crawler.MarkMajors(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
}

func getPlatformsEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill platform fields from entity documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd)
			ctx := context.Background()

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
			if err := enricher.EnrichPlatforms(ctx); err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

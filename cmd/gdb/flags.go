package main

import (
	"github.com/spf13/cobra"
)

// addRunFlags registers the flags shared by the long-running pipeline
// stages.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "l", 0,
		"cap the number of items processed this run (0 means no cap)")
	cmd.Flags().BoolP("all", "a", false,
		"reprocess everything, not only unfinished items")
}

// applyRunFlags moves shared flag values into the runtime config.
func applyRunFlags(cmd *cobra.Command) {
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		cfg.Limit = limit
	}
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		cfg.ProcessAll = all
	}
}

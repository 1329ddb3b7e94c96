package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gamedex/gdb/internal/ioschema"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCreateCmd returns the create command.
func getCreateCmd() *cobra.Command {
	var force bool

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create or update the database schema",
		Long: `Create the GameDex database schema.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks for existing tables and prompts for confirmation
  3. Creates or updates all tables with GORM AutoMigrate
  4. Sets byte-order collation on slug columns

Re-running against an existing schema is safe; AutoMigrate only adds
what is missing. Dropping is destructive: cached documents and roster
cursors are lost, and every upstream document gets fetched again.

Use --force to drop existing tables without confirmation.

Examples:
  gdb create
  gdb create --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, force)
		},
	}

	createCmd.Flags().BoolVarP(&force, "force", "f",
		false, "drop existing tables without confirmation")

	return createCmd
}

func runCreate(
	_ *cobra.Command,
	_ []string,
	force bool,
) error {
	ctx := context.Background()

	op, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	hasTables, err := op.TableExists(ctx, "games")
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	drop := false
	if hasTables && force {
		drop = true
	}
	if hasTables && !force {
		gn.Warn("\nWarning: Database contains existing tables.")
		gn.Warn("Answering yes drops ALL existing tables and data,")
		gn.Warn("including cached documents and roster cursors.")
		gn.Warn("Answering no keeps data and only updates the schema.")
		fmt.Print("\nDrop existing tables? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}

		response = strings.TrimSpace(strings.ToLower(response))
		drop = response == "yes" || response == "y"
	}

	sm := ioschema.NewManager(op)
	if err := sm.Create(ctx, drop); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("\nNext steps:")
	gn.Info("  - Run <em>gdb platforms discover</em> to find platforms")
	gn.Info("  - Run <em>gdb platforms major</em> to mark crawl targets")
	gn.Info("  - Run <em>gdb roster</em> to crawl game rosters")

	return nil
}

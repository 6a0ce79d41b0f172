package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uit-hub/academic-ledger/internal/infrastructure/persistence/postgres"
)

var migrateSteps int

// migrateCmd manages the database schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd, func(c *postgres.Connection, a *app) (postgres.MigrationStatus, error) {
			return c.Migrate(a.log)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if migrateSteps <= 0 {
			return fmt.Errorf("--steps must be positive")
		}
		return runMigrate(cmd, func(c *postgres.Connection, a *app) (postgres.MigrationStatus, error) {
			return c.MigrateDown(a.log, migrateSteps)
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigrate(cmd *cobra.Command, run func(*postgres.Connection, *app) (postgres.MigrationStatus, error)) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	status, err := run(a.db, a)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", status.Version, status.Dirty)
	return nil
}

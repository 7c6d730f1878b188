package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/internal/repository/postgres"
)

var migrateSteps int

// migrateCmd manages the PostgreSQL schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long: `Apply or roll back the embedded schema migrations.

Requires storage.driver=postgres.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, func(m migrator) error { return m.up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, func(m migrator) error { return m.down(migrateSteps) })
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

type migrator struct {
	up   func() error
	down func(steps int) error
}

func runMigrate(cmd *cobra.Command, action func(migrator) error) error {
	ctx, cancel, cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	if cfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("migrations need storage.driver=%s, got %q", config.StoragePostgres, cfg.Storage.Driver)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m := migrator{
		up:   func() error { return postgres.MigrateUp(db) },
		down: func(steps int) error { return postgres.MigrateDown(db, steps) },
	}
	if err := action(m); err != nil {
		return err
	}

	version, dirty, err := postgres.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}

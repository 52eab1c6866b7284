package cmd

import (
	"fmt"

	"github.com/huangsam/storesync/internal/outwriter"
	"github.com/huangsam/storesync/internal/parquet"
	"github.com/huangsam/storesync/internal/recordstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeCmd is the parent command for record store maintenance.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the record store",
	Long: `Inspect and maintain the record store behind storesync.

Backends:
  sqlite     - Local file (default: ~/.storesync.db)
  mysql      - MySQL server, set --db-connect
  postgresql - PostgreSQL server, set --db-connect
  none       - In-memory, lost when the command exits

Subcommands:
  status  - Show the backend and row counts
  migrate - Move the schema to a version
  clear   - Drop all data
  export  - Write every table to Parquet files

Examples:
  storesync store status
  STORESYNC_BACKEND=postgresql STORESYNC_DB_CONNECT="postgres://..." storesync store migrate`,
}

// storeStatusCmd shows the record store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the backend and row counts per table",
	Long: `Show which backend is in use, whether it is reachable and how many
rows each table holds.

Examples:
  storesync store status
  storesync store status --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := session.Store().Status(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to get store status: %w", err)
		}
		return outwriter.NewOutWriter(cfg).WriteStatus(status)
	},
}

// storeMigrateCmd runs schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the record store schema",
	Long: `Move the record store schema to a target version.

Other commands migrate to the latest version on their own. Use this to
roll back or to pin a specific version.

Examples:
  # Latest version
  storesync store migrate

  # Roll back everything
  storesync store migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, err := recordstore.Migrate(cfg.Backend, cfg.DBConnect, viper.GetInt("target-version"))
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter(cfg).WriteMigration(result)
	},
}

// storeClearCmd wipes the record store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all record store data",
	Long: `Delete all data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops every table, including the migration version table

Examples:
  storesync store clear
  STORESYNC_BACKEND=mysql STORESYNC_DB_CONNECT="..." storesync store clear`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := recordstore.Clear(cfg.Backend, cfg.DBConnect); err != nil {
			return fmt.Errorf("failed to clear record store: %w", err)
		}
		cmd.Println("Record store cleared successfully.")
		return nil
	},
}

// storeExportCmd exports all tables to Parquet.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every table to Parquet files",
	Long: `Write profiles, products, customers and cart lines to Parquet files
for offline analysis. Carts are flattened to one row per line.

Examples:
  storesync store export --dir ./export`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		files, err := parquet.Export(rootCtx, session.Store(), dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			cmd.Printf("💾 %-10s %s (%d row(s))\n", f.Table, f.Path, f.Rows)
		}
		return nil
	},
}

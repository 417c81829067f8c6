package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketpilot/pocketpilot-api/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the Postgres schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required to run migrations")
	}

	db, err := config.InitDB(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.RunMigrations(db); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}

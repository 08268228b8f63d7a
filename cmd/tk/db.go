package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Tickora tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			defer closeDB(gormDB)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s (%s)\n", cfg.Storage.Driver, displayDSN(cfg.Storage.Driver, db.DSN(cfg.Storage)))
			fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
			return nil
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample workspace",
		Long:  "Creates a sample team, admin user, Scrum project, active sprint and three work items. Existing records are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				n, err := db.Seed(e.store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records\n", n)
				return nil
			})
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

// displayDSN hides credentials in a mysql DSN.
func displayDSN(driver, dsn string) string {
	if driver != "mysql" {
		return dsn
	}
	if i := strings.LastIndex(dsn, "@"); i >= 0 {
		return "***" + dsn[i:]
	}
	return dsn
}

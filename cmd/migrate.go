package cmd

import (
	"github.com/spf13/cobra"

	"github.com/junaidrashid-git/canteen-api/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.Open(cmd.Context(), cfg.DSN(), log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("✅ schema migrated")
		return nil
	},
}

package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rollcall-rfid/rollcall/internal/db"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Create or update the database schema and exit",
	PreRunE: loadConfig,
	RunE: func(_ *cobra.Command, _ []string) error {
		gdb, err := db.Open(&cfg)
		if err != nil {
			return err
		}

		if err = db.Migrate(gdb); err != nil {
			return err
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated")

		return nil
	},
}

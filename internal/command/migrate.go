package command

import (
	"github.com/spf13/cobra"

	"github.com/agenthub/agenthub/internal/config"
	"github.com/agenthub/agenthub/internal/logger"
	"github.com/agenthub/agenthub/internal/store"
)

// NewMigrateCmd applies the database schema and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.Development()})

			db, err := store.Open(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer store.Close(db)

			if err := store.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("schema migrated")
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishantrana1982/oneonone/internal/config"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Open applies pending migrations
			store, err := storage.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			version, dirty, err := store.SchemaVersion()
			if err != nil {
				return err
			}

			fmt.Printf("Database: %s\n", cfg.Database.Path)
			fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}
}

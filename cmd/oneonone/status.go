package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishantrana1982/oneonone/internal/config"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status and statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Println("oneonone Status")
			fmt.Println(strings.Repeat("=", 40))

			fmt.Println("\nConfiguration:")
			fmt.Printf("  Database:  %s\n", cfg.Database.Path)
			fmt.Printf("  Blobs:     %s\n", cfg.Blobs.Dir)
			fmt.Printf("  Speech:    %s (key %s)\n", cfg.Speech.BaseURL, keyStatus(cfg.Speech.APIKey))
			if cfg.SMTP.Host != "" {
				fmt.Printf("  SMTP:      %s:%d\n", cfg.SMTP.Host, cfg.SMTP.Port)
			} else {
				fmt.Println("  SMTP:      disabled")
			}

			fmt.Println("\nConnecting to storage...")

			svc, err := newService()
			if err != nil {
				fmt.Printf("  Status:    FAILED (%s)\n", err)
				return nil // Don't fail command, just report status
			}
			defer svc.Close()

			fmt.Println("  Status:    CONNECTED")

			stats, err := svc.Stats()
			if err != nil {
				fmt.Printf("\nEntity counts: error (%s)\n", err)
				return nil
			}

			fmt.Println("\nRows by entity:")
			for entity, count := range stats {
				fmt.Printf("  %-14s %d\n", entity+":", count)
			}

			return nil
		},
	}
}

func keyStatus(key string) string {
	if key == "" {
		return "not set"
	}
	return "set"
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nishantrana1982/oneonone/internal/config"
	"github.com/nishantrana1982/oneonone/internal/core"
)

var Version = "dev"

func main() {
	// Local development secrets; missing .env is fine
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "oneonone",
		Short:   "oneonone - One-on-one meeting management",
		Version: Version,
	}

	// Add subcommands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(materializeCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a service from the resolved configuration.
func newService() (*core.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return core.NewService(core.Config{
		DBPath:        cfg.Database.Path,
		BlobDir:       cfg.Blobs.Dir,
		SpeechBaseURL: cfg.Speech.BaseURL,
		SpeechAPIKey:  cfg.Speech.APIKey,
		SMTPHost:      cfg.SMTP.Host,
		SMTPPort:      cfg.SMTP.Port,
		SMTPUser:      cfg.SMTP.User,
		SMTPPass:      cfg.SMTP.Password,
		EmailFrom:     cfg.SMTP.From,
		OrgDomain:     cfg.Org.EmailDomain,
	})
}

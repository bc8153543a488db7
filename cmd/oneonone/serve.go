package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/nishantrana1982/oneonone/internal/config"
	"github.com/nishantrana1982/oneonone/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the oneonone web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			svc, err := newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			server := web.NewServer(svc)
			log.Printf("Starting web server on %s", addr)
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

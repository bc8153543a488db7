package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nishantrana1982/oneonone/internal/config"
	"github.com/nishantrana1982/oneonone/internal/core"
	"github.com/nishantrana1982/oneonone/internal/web"
)

var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Local development secrets; missing .env is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	log.Printf("oneonone-server version %s starting...", Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	svc, err := core.NewService(core.Config{
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
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	defer svc.Close()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		svc.Close()
		os.Exit(0)
	}()

	server := web.NewServer(svc)

	log.Printf("Starting web server on %s", cfg.Server.Addr)
	if err := server.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Web server error: %v", err)
	}
}

package config

import (
	"os"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "~/.oneonone/oneonone.db",
		},
		Blobs: BlobsConfig{
			Dir: "~/.oneonone/blobs",
		},
		Speech: SpeechConfig{
			BaseURL: "https://api.voicebrief.dev/v1",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Org: OrgConfig{
			EmailDomain: "",
		},
	}
}

// WriteDefault writes the default configuration to a file
func WriteDefault(path string) error {
	content := `# oneonone configuration
version: "1"

# HTTP server
server:
  addr: ":8080"

# SQLite database
database:
  path: ~/.oneonone/oneonone.db

# Binary artifact storage (audio recordings, attachments)
blobs:
  dir: ~/.oneonone/blobs

# Speech transcription and analysis service
# API key comes from the ONEONONE_SPEECH_API_KEY environment variable
speech:
  base_url: https://api.voicebrief.dev/v1

# Email notifications (leave host empty to disable)
# Password comes from the ONEONONE_SMTP_PASS environment variable
smtp:
  host: ""
  port: 587
  user: ""
  from: ""

# Organization settings
org:
  # Only emails under this domain may sign in ("" disables the check)
  email_domain: ""
`
	return os.WriteFile(path, []byte(content), 0644)
}

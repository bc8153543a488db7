package config

// Config represents the full oneonone configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// SQLite database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Binary artifact storage (audio, attachments)
	Blobs BlobsConfig `yaml:"blobs" mapstructure:"blobs"`

	// Speech transcription and analysis service
	Speech SpeechConfig `yaml:"speech" mapstructure:"speech"`

	// SMTP notification delivery
	SMTP SMTPConfig `yaml:"smtp" mapstructure:"smtp"`

	// Organization-wide settings
	Org OrgConfig `yaml:"org" mapstructure:"org"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DatabaseConfig configures SQLite storage
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BlobsConfig configures local blob storage
type BlobsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// SpeechConfig configures the transcription/analysis API client.
// The API key is taken from the ONEONONE_SPEECH_API_KEY environment
// variable, never from the config file.
type SpeechConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"-" mapstructure:"-"`
}

// SMTPConfig configures email delivery. An empty host disables email.
// The password is taken from the ONEONONE_SMTP_PASS environment variable.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"-" mapstructure:"-"`
	From     string `yaml:"from" mapstructure:"from"`
}

// OrgConfig holds organization-wide defaults
type OrgConfig struct {
	EmailDomain string `yaml:"email_domain" mapstructure:"email_domain"`
}

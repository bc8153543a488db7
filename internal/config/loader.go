package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Load loads configuration from the default path plus environment overrides
func Load() (*Config, error) {
	return LoadPath(DefaultPath())
}

// LoadPath loads configuration from a specific file. A missing file yields
// the defaults; secrets and overrides are then applied from the environment.
func LoadPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// applyEnv layers ONEONONE_* environment variables over the file values.
// Secrets (API key, SMTP password) are environment-only.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ONEONONE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ONEONONE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ONEONONE_BLOB_DIR"); v != "" {
		cfg.Blobs.Dir = v
	}
	if v := os.Getenv("ONEONONE_SPEECH_BASE_URL"); v != "" {
		cfg.Speech.BaseURL = v
	}
	if v := os.Getenv("ONEONONE_SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("ONEONONE_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("ONEONONE_SMTP_USER"); v != "" {
		cfg.SMTP.User = v
	}
	if v := os.Getenv("ONEONONE_EMAIL_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("ONEONONE_ORG_DOMAIN"); v != "" {
		cfg.Org.EmailDomain = v
	}

	cfg.Speech.APIKey = os.Getenv("ONEONONE_SPEECH_API_KEY")
	cfg.SMTP.Password = os.Getenv("ONEONONE_SMTP_PASS")
}

// DefaultPath returns the path to the config file
func DefaultPath() string {
	if v := os.Getenv("ONEONONE_CONFIG"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".oneonone", "config.yaml")
}

// Package config loads client configuration from environment variables.
package config

import (
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds everything the CLI and library wiring need.
type Config struct {
	APIURL         string        `env:"AFAZER_API_URL,required,notEmpty"`
	AppName        string        `env:"AFAZER_APP_NAME" envDefault:"Afazer"`
	DataDir        string        `env:"AFAZER_DATA_DIR" envDefault:".afazer"`
	HTTPTimeout    time.Duration `env:"AFAZER_HTTP_TIMEOUT" envDefault:"30s"`
	KeyringService string        `env:"AFAZER_KEYRING_SERVICE" envDefault:"afazer"`
	LogLevel       string        `env:"AFAZER_LOG_LEVEL" envDefault:"info"`
}

// New parses the environment into a Config.
func New() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.New] parse env")
	}
	return cfg, nil
}

// CredentialsFile is the file-store path inside the data dir.
func (c Config) CredentialsFile() string {
	return filepath.Join(c.DataDir, "credentials.json")
}

// CacheFile is the offline cache path inside the data dir.
func (c Config) CacheFile() string {
	return filepath.Join(c.DataDir, "cache.db")
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-afazer-client/internal/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("AFAZER_API_URL", "https://api.afazer.test")

	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://api.afazer.test", cfg.APIURL)
	require.Equal(t, "Afazer", cfg.AppName)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "afazer", cfg.KeyringService)
}

func TestNewRequiresAPIURL(t *testing.T) {
	t.Setenv("AFAZER_API_URL", "")

	_, err := config.New()
	require.Error(t, err)
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("AFAZER_API_URL", "https://api.afazer.test")
	t.Setenv("AFAZER_DATA_DIR", "/tmp/afazer")

	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "/tmp/afazer/credentials.json", cfg.CredentialsFile())
	require.Equal(t, "/tmp/afazer/cache.db", cfg.CacheFile())
}

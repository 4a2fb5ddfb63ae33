package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SOURCE_WC_URL", "https://old.example.com/")
	t.Setenv("SOURCE_WC_KEY", "ck_src")
	t.Setenv("SOURCE_WC_SECRET", "cs_src")
	t.Setenv("DESTINATION_WC_URL", "https://new.example.com")
	t.Setenv("WC_CONSUMER_KEY", "ck_dst")
	t.Setenv("WC_CONSUMER_SECRET", "cs_dst")
	t.Setenv("SOURCE_PER_PAGE", "50")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://old.example.com", cfg.Source.URL)
	assert.Equal(t, "ck_src", cfg.Source.Key)
	assert.Equal(t, "cs_src", cfg.Source.Secret)
	assert.Equal(t, 50, cfg.Source.PerPage)
	assert.Equal(t, "https://new.example.com", cfg.Destination.StoreURL())
	assert.Equal(t, "ck_dst", cfg.Destination.ConsumerKey)
	assert.Equal(t, "cs_dst", cfg.Destination.ConsumerSecret)
	assert.Equal(t, "memory", cfg.Reports.Backend)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadFallsBackToBaseURL(t *testing.T) {
	t.Setenv("SOURCE_WC_URL", "https://old.example.com")
	t.Setenv("WC_BASE_URL", "https://base.example.com/")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://base.example.com", cfg.Destination.StoreURL())
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
source:
  url: https://old.example.com
  max_requests_per_second: 5
destination:
  url: https://new.example.com
  attribute_id_map:
    "3": 30
    "4": 41
reports:
  backend: redis
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Source.MaxRequestsPerSecond)
	assert.Equal(t, map[string]int64{"3": 30, "4": 41}, cfg.Destination.AttributeIDMap)
	assert.Equal(t, "redis", cfg.Reports.Backend)
}

func TestLoadRequiresStoreURLs(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.url")
	assert.Contains(t, err.Error(), "destination.url")
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Source:      SourceConfig{URL: "https://a"},
		Destination: DestinationConfig{URL: "https://b"},
		Reports:     ReportsConfig{Backend: "mongo"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DISCOVERY_SEED_DOMAINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scraper.RequestTimeout)
	assert.Equal(t, 250, cfg.Scraper.CatalogPageSize)
	assert.Equal(t, 3, cfg.Discovery.MaxCompetitors)
	assert.NotEmpty(t, cfg.Discovery.SeedDomains)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCRAPER_REQUEST_TIMEOUT", "5")
	t.Setenv("SCRAPER_REQUEST_DELAY", "250ms")
	t.Setenv("DISCOVERY_SEED_DOMAINS", "a.com, b.com,,")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Scraper.RequestTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.DelayBetweenRequests)
	assert.Equal(t, []string{"a.com", "b.com"}, cfg.Discovery.SeedDomains)
	assert.True(t, cfg.LLM.Enabled())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Scraper:     ScraperConfig{RequestTimeout: time.Second},
		LLM:         LLMConfig{Timeout: time.Second},
	}
	assert.Error(t, cfg.Validate(), "production requires a database password")

	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Discovery.MaxCompetitors = -1
	assert.Error(t, cfg.Validate())
	cfg.Discovery.MaxCompetitors = 2

	cfg.Storage.SnapshotsEnabled = true
	assert.Error(t, cfg.Validate())
	cfg.Storage.LocalPath = "/tmp/snapshots"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", d.DSN())
}

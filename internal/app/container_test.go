package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/app"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		API: config.APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 5 * time.Second,
		},
		RateLimiter: config.RateLimiterConfig{Enabled: true, RPS: 10, Burst: 5},
		Auth:        config.AuthConfig{Token: "static-token"},
		Bulk: config.BulkConfig{
			Concurrency:    3,
			JournalEnabled: true,
			JournalPath:    filepath.Join(dir, "journal.db"),
		},
		Export:  config.ExportConfig{Separator: ",", BOM: false, PageSize: 10, MaxPages: 2},
		Metrics: config.MetricsConfig{Enabled: true, TextfilePath: filepath.Join(dir, "metrics", "backoffice.prom")},
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)

	container, err := app.NewContainer(cfg)
	require.NoError(t, err)
	require.NotNil(t, container)

	// Assert that all fields are initialized
	assert.NotNil(t, container.Config)
	assert.NotNil(t, container.Registry)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Credentials)
	assert.NotNil(t, container.Client)
	assert.NotNil(t, container.Journal)
	assert.NotNil(t, container.Runner)
	assert.NotNil(t, container.Services)
	assert.NotNil(t, container.Services.Civilites)
	assert.NotNil(t, container.Services.EchangeInteresses)
	assert.Equal(t, 3, container.Runner.Concurrency())

	token, err := container.Credentials.Token(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)

	// Check that the journal schema was migrated
	runs, err := container.Journal.List(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, container.Close())
	_, err = os.Stat(cfg.Metrics.TextfilePath)
	assert.NoError(t, err, "metrics textfile written on close")
}

func TestNewContainer_JournalDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bulk.JournalEnabled = false
	cfg.Metrics.Enabled = false

	container, err := app.NewContainer(cfg)
	require.NoError(t, err)

	assert.Nil(t, container.Journal)
	assert.NoError(t, container.Close())
	_, err = os.Stat(cfg.Metrics.TextfilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewContainer_InvalidBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.BaseURL = "ftp://example.com"

	_, err := app.NewContainer(cfg)
	assert.Error(t, err)
}

func TestNewContainer_IndependentRegistries(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bulk.JournalEnabled = false

	first, err := app.NewContainer(cfg)
	require.NoError(t, err)
	second, err := app.NewContainer(cfg)
	require.NoError(t, err, "a second container must not collide on metric registration")

	assert.NotSame(t, first.Registry, second.Registry)
}

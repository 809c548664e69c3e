package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	assert.Equal(t, "5000", cfg.API.ListenPort)
	assert.Equal(t, 50, cfg.Github.SearchPerPage)
	assert.Equal(t, 30, cfg.Github.TrendingPerPage)
	assert.Equal(t, 3, cfg.Github.MaxRetries)
	assert.Equal(t, time.Second, cfg.Github.RetryInitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Github.RetryMaxDelay)
	assert.Equal(t, 5*time.Minute, cfg.Github.SearchCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Github.TrendingCacheTTL)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
}

func TestGetDefault_ReturnsNewInstance(t *testing.T) {
	first := GetDefault()
	first.API.ListenPort = "8080"

	assert.Equal(t, "5000", GetDefault().API.ListenPort)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	// tests run inside the config directory, where config/config.toml does not exist
	cfg, err := Load("")

	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NotNil(t, cfg)
	assert.Equal(t, GetDefault(), cfg)
}

func TestLoad_ShippedConfigFile(t *testing.T) {
	cfg, err := Load("config.toml")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.API.ListenPort)
	assert.Equal(t, "http://localhost:5000/", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.Github.MaxRetries)
	assert.Equal(t, time.Second, cfg.Github.RetryInitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Github.RetryMaxDelay)
	assert.Equal(t, 5*time.Minute, cfg.Github.SearchCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.Github.TrendingCacheTTL)
	assert.Equal(t, 600, cfg.Github.RequestsPerHour)
	assert.Equal(t, 8, cfg.Tasks.MaxParallelTasksAllowed)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Logs.Level)
}

package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TEEDY_URL", "https://docs.example.com/ ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", cfg.BaseURL)
	assert.Equal(t, DialectUser, cfg.Dialect)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.ReadRetries)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.NeedsURL())
	assert.True(t, cfg.NeedsToken())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEEDY_URL", "http://localhost:8080")
	t.Setenv("TEEDY_AUTH_TOKEN_FILE", "/tmp/token.age")
	t.Setenv("TEEDY_API_DIALECT", "admin")
	t.Setenv("TEEDY_TIMEOUT", "3s")
	t.Setenv("TEEDY_READ_RETRIES", "2")
	t.Setenv("TEEDY_DEMO_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DialectAdmin, cfg.Dialect)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.ReadRetries)
	assert.True(t, cfg.DemoMode)
	assert.False(t, cfg.NeedsToken())
}

func TestLoadRejectsUnknownDialect(t *testing.T) {
	t.Setenv("TEEDY_API_DIALECT", "graphql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRateLimit(t *testing.T) {
	t.Setenv("TEEDY_RATE_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestOpenLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teedy.log")
	cfg := Config{LogFile: path, LogLevel: "info"}

	logger, closer, err := cfg.OpenLogger()
	require.NoError(t, err)
	logger.WithField("resource", "user/registration").Infof("loaded %d requests", 3)
	logger.Debug("hidden below info")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `level=info msg="loaded 3 requests" resource=user/registration`)
	assert.NotContains(t, string(data), "hidden below info")
}

func TestOpenLoggerDiscardsWithoutFile(t *testing.T) {
	logger, closer, err := Config{LogLevel: "debug"}.OpenLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Equal(t, io.Discard, logger.Out)
	assert.NoError(t, closer.Close())
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("TEEDY_LOG_LEVEL", "chatty")

	_, err := Load()
	assert.Error(t, err)
}

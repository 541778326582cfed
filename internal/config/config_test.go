package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "BASE_URL", "LOG_LEVEL", "LOG_FORMAT", "READ_TIMEOUT_SEC", "WRITE_TIMEOUT_SEC", "IDLE_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}

	cfg, err := Get()
	require.NoError(t, err)
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:wishcraft.db?cache=shared&mode=rwc", cfg.DBDSN)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
}

func TestGet_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("BASE_URL", "https://wish.example")
	t.Setenv("WRITE_TIMEOUT_SEC", "5")

	cfg, err := Get()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "https://wish.example", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
}

func TestGet_InvalidTimeout(t *testing.T) {
	t.Setenv("READ_TIMEOUT_SEC", "soon")

	_, err := Get()
	assert.ErrorContains(t, err, "READ_TIMEOUT_SEC")
}

func TestMustGetConfig(t *testing.T) {
	t.Setenv("WISHCRAFT_TEST_KEY", "")
	assert.Panics(t, func() { MustGetConfig("WISHCRAFT_TEST_KEY") })

	t.Setenv("WISHCRAFT_TEST_KEY", "value")
	assert.Equal(t, "value", MustGetConfig("WISHCRAFT_TEST_KEY"))
}

func TestGetConfigWithDefault(t *testing.T) {
	t.Setenv("WISHCRAFT_TEST_KEY", "")
	assert.Equal(t, "fallback", GetConfigWithDefault("WISHCRAFT_TEST_KEY", "fallback"))
}

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.EventEndGrace)
	assert.True(t, cfg.NotifyViaRabbitMQ)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "events")
	t.Setenv("SWEEP_INTERVAL", "15s")
	t.Setenv("EVENT_END_GRACE", "6h")
	t.Setenv("NOTIFY_VIA_RABBITMQ", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 15*time.Second, cfg.SweepInterval)
	assert.Equal(t, 6*time.Hour, cfg.EventEndGrace)
	assert.False(t, cfg.NotifyViaRabbitMQ)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "dbname=events")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SWEEP_INTERVAL", "often")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("zero interval", func(t *testing.T) {
		t.Setenv("SWEEP_INTERVAL", "0s")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})
}

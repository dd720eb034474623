// config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "staunton_chat", cfg.DB.DBName)
	assert.Len(t, cfg.StorageKey, 32)
	assert.Equal(t, 5*time.Minute, cfg.PresenceWindow)

	assert.Equal(t, 1*time.Second, cfg.Bus.BaseDelay)
	assert.Equal(t, 2.0, cfg.Bus.Multiplier)
	assert.Equal(t, 30*time.Second, cfg.Bus.MaxDelay)
	assert.Equal(t, 10, cfg.Bus.MaxRetries)

	assert.Equal(t, 1*time.Hour, cfg.Stats.RunInterval)
	assert.True(t, cfg.Stats.Enabled)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Driver:   "mysql",
		Host:     "db.internal",
		Port:     3307,
		User:     "chat",
		Password: "secret",
		DBName:   "staunton_chat",
	}

	assert.Equal(t,
		"chat:secret@tcp(db.internal:3307)/staunton_chat?charset=utf8mb4&parseTime=True&loc=Local",
		db.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_HOST", "db.test")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("BUS_BASE_DELAY", "250ms")
	t.Setenv("BUS_MAX_RETRIES", "4")
	t.Setenv("STATS_ENABLED", "false")
	t.Setenv("SIMULATE_MARKET_FEED", "false")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "db.test", cfg.DB.Host)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Bus.BaseDelay)
	assert.Equal(t, 4, cfg.Bus.MaxRetries)
	assert.False(t, cfg.Stats.Enabled)
	assert.False(t, cfg.SimulateMarketFeed)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("BUS_BASE_DELAY", "soon")
	t.Setenv("STORAGE_KEY", "too-short")

	cfg := Load()

	assert.Equal(t, DefaultConfig.DB.Port, cfg.DB.Port)
	assert.Equal(t, DefaultConfig.Bus.BaseDelay, cfg.Bus.BaseDelay)
	// Ключ неверной длины заменяется дефолтным
	assert.Equal(t, DefaultConfig.StorageKey, cfg.StorageKey)
}

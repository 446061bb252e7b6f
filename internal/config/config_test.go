package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Bursar", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TTL)
	assert.NotEmpty(t, cfg.Auth.Secret)
	assert.Equal(t, 10, cfg.Redis.LoginLimit)
	assert.Equal(t, "bursar.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/bursar?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://portal.example.edu")
	t.Setenv("PAYMENT_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.DB.Driver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, []string{"http://localhost:3000", "https://portal.example.edu"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("UnknownDriver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "sqlite")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("ProductionNeedsSecret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")

		_, err := config.Load()
		assert.Error(t, err)
	})
}

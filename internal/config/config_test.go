// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromPath("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "biblioteca", cfg.Telemetry.ServiceName)
	assert.Equal(t, time.Hour, cfg.Overdue.ScanInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:biblioteca.db")
	t.Setenv("OVERDUE_SCAN_INTERVAL", "5m")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:biblioteca.db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Overdue.ScanInterval)
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yaml := `
env: staging
server:
  addr: ":9090"
database:
  driver: postgres
  dsn: postgres://localhost/biblioteca?sslmode=disable
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	_, err := LoadFromPath("")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("DB_DRIVER", "mongo")
	_, err = LoadFromPath("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

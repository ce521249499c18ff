package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Todos.PageSize)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
port: 9000
database:
  host: db.internal
  port: 5433
  username: app
  database: tasks
auth:
  token_ttl: 2h
log:
  level: debug
  format: console
`)
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv(FileEnv, "")

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("TODO_PAGE_SIZE", "ten")
		_, err := Load("")
		assert.ErrorContains(t, err, "TODO_PAGE_SIZE")
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("TODO_PAGE_SIZE", "0")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidateServeNeedsSecret(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateServe())
}

func TestDSN(t *testing.T) {
	d := Default().Database
	d.Password = "pw"
	d.Schema = "app"
	assert.Equal(t,
		"host=localhost user=postgres password=pw dbname=taskhub port=5432 sslmode=disable search_path=app",
		d.DSN())
}

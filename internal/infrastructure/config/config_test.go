package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"ATELIER_APP_NAME":                    os.Getenv("ATELIER_APP_NAME"),
		"ATELIER_APP_ENV":                     os.Getenv("ATELIER_APP_ENV"),
		"ATELIER_APP_PORT":                    os.Getenv("ATELIER_APP_PORT"),
		"ATELIER_DATABASE_PATH":               os.Getenv("ATELIER_DATABASE_PATH"),
		"ATELIER_DATABASE_MAX_OPEN_CONNS":     os.Getenv("ATELIER_DATABASE_MAX_OPEN_CONNS"),
		"ATELIER_DATABASE_MAX_IDLE_CONNS":     os.Getenv("ATELIER_DATABASE_MAX_IDLE_CONNS"),
		"ATELIER_BACKUP_DIR":                  os.Getenv("ATELIER_BACKUP_DIR"),
		"ATELIER_BACKUP_MAX_COUNT":            os.Getenv("ATELIER_BACKUP_MAX_COUNT"),
		"ATELIER_REPORT_FORECAST_WINDOW_DAYS": os.Getenv("ATELIER_REPORT_FORECAST_WINDOW_DAYS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "atelier-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "atelier.db", cfg.Database.Path)
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
		assert.Equal(t, "backups", cfg.Backup.Dir)
		assert.Equal(t, 30, cfg.Backup.MaxCount)
		assert.Equal(t, int64(100), cfg.Backup.MaxTotalSizeMB)
		assert.Equal(t, 60, cfg.Backup.MaxAgeDays)
		assert.Equal(t, int64(90), cfg.Report.ForecastWindowDays)
	})

	t.Run("loads values from environment variables with ATELIER prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("ATELIER_APP_NAME", "test-app")
		os.Setenv("ATELIER_APP_ENV", "testing")
		os.Setenv("ATELIER_APP_PORT", "9000")
		os.Setenv("ATELIER_DATABASE_PATH", "/tmp/test.db")
		os.Setenv("ATELIER_BACKUP_DIR", "/tmp/backups")
		os.Setenv("ATELIER_BACKUP_MAX_COUNT", "5")
		os.Setenv("ATELIER_REPORT_FORECAST_WINDOW_DAYS", "30")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
		assert.Equal(t, "/tmp/backups", cfg.Backup.Dir)
		assert.Equal(t, 5, cfg.Backup.MaxCount)
		assert.Equal(t, int64(30), cfg.Report.ForecastWindowDays)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("ATELIER_DATABASE_MAX_OPEN_CONNS", "1")
		os.Setenv("ATELIER_DATABASE_MAX_IDLE_CONNS", "5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects in-memory database in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ATELIER_APP_ENV", "production")
		os.Setenv("ATELIER_DATABASE_PATH", ":memory:")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ":memory:")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	t.Run("memory path passes through untouched", func(t *testing.T) {
		d := DatabaseConfig{Path: ":memory:"}
		assert.Equal(t, ":memory:", d.DSN())
	})

	t.Run("file path carries pragmas", func(t *testing.T) {
		d := DatabaseConfig{Path: "atelier.db", BusyTimeout: 5 * 1000 * 1000 * 1000}
		dsn := d.DSN()
		assert.Contains(t, dsn, "atelier.db?")
		assert.Contains(t, dsn, "_busy_timeout=5000")
		assert.Contains(t, dsn, "_journal_mode=WAL")
		assert.Contains(t, dsn, "_foreign_keys=on")
	})
}

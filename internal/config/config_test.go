package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBType)
	assert.Equal(t, "data/vocabquiz.db", cfg.DatabaseURL)
	assert.True(t, cfg.EnableScheduler)
	assert.Equal(t, 4, cfg.NotificationStartHour)
	assert.Equal(t, 18, cfg.NotificationEndHour)
	assert.Equal(t, 30*time.Minute, cfg.PurgeInterval)
	assert.Equal(t, 6*time.Hour, cfg.GameUsedTTL)
	assert.Equal(t, 10, cfg.QuizDefaultCount)
	assert.Equal(t, 1, cfg.GameDefaultCount)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/vocab")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("GAME_USED_TTL", "90m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "postgres://localhost/vocab", cfg.DatabaseURL)
	assert.False(t, cfg.EnableScheduler)
	assert.Equal(t, 90*time.Minute, cfg.GameUsedTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZ_DEFAULT_COUNT=5\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUIZ_DEFAULT_COUNT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.QuizDefaultCount)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"DB_TYPE":                 "mysql",
		"NOTIFICATION_START_HOUR": "24",
		"NOTIFICATION_END_HOUR":   "-1",
		"GAME_USED_TTL":           "0s",
		"GAME_DEFAULT_COUNT":      "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

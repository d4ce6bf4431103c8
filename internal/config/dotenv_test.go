package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "SONGS_CSV", "DEFAULT_TARGET_SCORE", "DEFAULT_MAX_PLAYERS",
		"DEFAULT_ROUND_SECONDS", "ROOM_CODE_ATTEMPTS", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME_SECONDS", "DB_CONN_MAX_IDLE_SECONDS", "WRITE_RATE_PER_SECOND", "WRITE_RATE_BURST",
		"LOG_LEVEL", "LOG_FORMAT", "GIN_MODE",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://quiz@localhost/quiz")
	t.Setenv("DEFAULT_TARGET_SCORE", "3")
	t.Setenv("DEFAULT_ROUND_SECONDS", "45")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("WRITE_RATE_PER_SECOND", "0")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://quiz@localhost/quiz", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.DefaultTargetScore)
	assert.Equal(t, 45, cfg.DefaultRoundSeconds)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Zero(t, cfg.WriteRatePerSecond)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DEFAULT_MAX_PLAYERS", "12")
	t.Setenv("DEFAULT_ROUND_SECONDS", "5")
	t.Setenv("ROOM_CODE_ATTEMPTS", "many")
	t.Setenv("WRITE_RATE_BURST", "-1")

	cfg := Load()
	assert.Equal(t, 8, cfg.DefaultMaxPlayers)
	assert.Equal(t, 120, cfg.DefaultRoundSeconds)
	assert.Equal(t, 10, cfg.RoomCodeAttempts)
	assert.Equal(t, 20, cfg.WriteRateBurst)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZ_DOTENV_PROBE=from-file\nQUIZ_DOTENV_KEEP=from-file\n"), 0o600))
	t.Setenv("QUIZ_DOTENV_KEEP", "from-env")
	t.Setenv("QUIZ_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("QUIZ_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("QUIZ_DOTENV_PROBE"))
	assert.Equal(t, "from-env", os.Getenv("QUIZ_DOTENV_KEEP"))
}

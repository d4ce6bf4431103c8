package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     string
	DatabaseURL              string
	SongsCSV                 string
	DefaultTargetScore       int
	DefaultMaxPlayers        int
	DefaultRoundSeconds      int
	RoomCodeAttempts         int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	WriteRatePerSecond       float64
	WriteRateBurst           int
	LogLevel                 string
	LogFormat                string
	GinMode                  string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		DefaultTargetScore:       5,
		DefaultMaxPlayers:        8,
		DefaultRoundSeconds:      120,
		RoomCodeAttempts:         10,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		WriteRatePerSecond:       10,
		WriteRateBurst:           20,
		LogLevel:                 "info",
		LogFormat:                "text",
		GinMode:                  "release",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SongsCSV = os.Getenv("SONGS_CSV")
	if raw := os.Getenv("DEFAULT_TARGET_SCORE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultTargetScore = value
		}
	}
	if raw := os.Getenv("DEFAULT_MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 && value <= 8 {
			cfg.DefaultMaxPlayers = value
		}
	}
	if raw := os.Getenv("DEFAULT_ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 10 {
			cfg.DefaultRoundSeconds = value
		}
	}
	if raw := os.Getenv("ROOM_CODE_ATTEMPTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoomCodeAttempts = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	// WRITE_RATE_PER_SECOND=0 turns the per-client write limit off.
	if raw := os.Getenv("WRITE_RATE_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.WriteRatePerSecond = value
		}
	}
	if raw := os.Getenv("WRITE_RATE_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WriteRateBurst = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.LogFormat = strings.ToLower(raw)
	}
	if raw := os.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}
	return cfg
}

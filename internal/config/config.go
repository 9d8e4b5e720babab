// Package config loads process settings from the environment and run
// definitions from YAML files.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings.
type Config struct {
	// Logging
	LogFile  string
	LogLevel slog.Level

	// Default path of the JSON report; "-" writes to stdout.
	Output string
}

// Load reads .env from the working directory if present, then the
// environment. Variables already set in the environment win over .env.
func Load() Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	return Config{
		LogFile:  getEnv("GOSTL_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("GOSTL_LOG_LEVEL", "INFO")),
		Output:   getEnv("GOSTL_OUTPUT", "-"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

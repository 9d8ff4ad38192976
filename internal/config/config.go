package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	LogLevel        string
	SnapshotWorkers int
	SnapshotQueue   int
	RefreshInterval time.Duration
	SubmitTimeout   time.Duration
	GrantTTL        time.Duration
	TokenTTL        time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:flagforge.db"),
		JWTSecret:       envOr("JWT_SECRET", ""),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		SnapshotWorkers: envIntOr("SNAPSHOT_WORKER_COUNT", 2),
		SnapshotQueue:   envIntOr("SNAPSHOT_QUEUE_SIZE", 64),
		RefreshInterval: envDurationOr("REFRESH_INTERVAL", 30*time.Second),
		SubmitTimeout:   envDurationOr("SUBMIT_TIMEOUT", 15*time.Second),
		GrantTTL:        envDurationOr("GRANT_TTL", 7*24*time.Hour),
		TokenTTL:        envDurationOr("TOKEN_TTL", 24*time.Hour),
	}
}

// Validate checks the configuration for values that would prevent the
// server from operating. All problems are reported at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET must be set")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.SnapshotWorkers <= 0 {
		problems = append(problems, "SNAPSHOT_WORKER_COUNT must be positive")
	}
	if c.SnapshotQueue <= 0 {
		problems = append(problems, "SNAPSHOT_QUEUE_SIZE must be positive")
	}
	if c.RefreshInterval < time.Second {
		problems = append(problems, "REFRESH_INTERVAL must be at least 1s")
	}
	if c.SubmitTimeout <= 0 {
		problems = append(problems, "SUBMIT_TIMEOUT must be positive")
	}
	if c.GrantTTL <= 0 {
		problems = append(problems, "GRANT_TTL must be positive")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

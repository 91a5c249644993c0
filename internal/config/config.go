package config

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	BindAddr          string
	DataDir           string
	OpenLibraryURL    string
	Query             string
	UserAgent         string
	RequestsPerSecond float64
	HTTPTimeout       time.Duration
	AuthorConcurrency int
	PassRetention     time.Duration
	JWTSecret         string
	AdminUser         string
	AdminPasswordHash string
	LogLevel          slog.Level
}

// Load reads configuration from command-line flags, the environment and
// an optional .env file. Flags take precedence over the environment.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load(".env")

	fs := flag.NewFlagSet("bookdash", flag.ContinueOnError)
	urlFlag := fs.String("url", "", "Server bind address (e.g., :8080 or 0.0.0.0:8080)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		BindAddr:          ":" + getEnv("BOOKDASH_PORT", "8080"),
		DataDir:           getEnv("BOOKDASH_DATA_DIR", "./data"),
		OpenLibraryURL:    getEnv("BOOKDASH_OPENLIBRARY_URL", "https://openlibrary.org"),
		Query:             getEnv("BOOKDASH_QUERY", "the great gatsby"),
		UserAgent:         getEnv("BOOKDASH_USER_AGENT", "bookdash/1.0 (+https://github.com/justyntemme/bookdash)"),
		RequestsPerSecond: getFloat("BOOKDASH_RPS", 5),
		HTTPTimeout:       getDuration("BOOKDASH_HTTP_TIMEOUT", 10*time.Second),
		AuthorConcurrency: getInt("BOOKDASH_AUTHOR_CONCURRENCY", 8),
		PassRetention:     getDuration("BOOKDASH_PASS_RETENTION", 30*24*time.Hour),
		JWTSecret:         getEnv("BOOKDASH_JWT_SECRET", "bookdash-default-secret-change-in-production"),
		AdminUser:         getEnv("BOOKDASH_ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("BOOKDASH_ADMIN_PASSWORD_HASH"),
		LogLevel:          parseLevel(getEnv("BOOKDASH_LOG_LEVEL", "info")),
	}

	if *urlFlag != "" {
		cfg.BindAddr = *urlFlag
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", raw)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("Ignoring invalid number setting", "key", key, "value", raw)
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Ignoring invalid duration setting", "key", key, "value", raw)
		return defaultValue
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Telegram
	BotToken         string
	AdminID          int64
	GroupID          int64
	RequiredChannels []string

	// Registry workbook
	WorkbookPath string

	// Currency scraping
	CurrencyURL string

	// Ops HTTP server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Broadcast pacing between deliveries
	BroadcastPace time.Duration

	// Cache
	CacheTTL time.Duration

	// Branch local time, used for quota resets and scheduled checks
	Timezone string

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from a .env file (when present) and the
// environment. The bot token is the only hard requirement.
func Load() (*Config, error) {
	// Missing .env is fine in production where vars come from the runtime.
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:         getEnv("BOT_TOKEN", ""),
		AdminID:          getEnvInt64("ADMIN_ID", 0),
		GroupID:          getEnvInt64("GROUP_ID", 0),
		RequiredChannels: getEnvList("REQUIRED_CHANNELS", nil),

		WorkbookPath: getEnv("WORKBOOK_PATH", "registry.xlsx"),

		CurrencyURL: getEnv("CURRENCY_URL", "https://bank.uz/uz/currency"),

		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 25),

		BroadcastPace: getEnvDuration("BROADCAST_PACE", 50*time.Millisecond),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		Timezone: getEnv("TIMEZONE", "Asia/Tashkent"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, trimming blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

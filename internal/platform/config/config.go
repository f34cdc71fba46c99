package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment so main
// stays lean. Product defaults (quoted rate, routing agent, minimum age) are
// deliberately configuration rather than literals in transition logic.
type Config struct {
	Addr     string
	LogLevel string

	PostgresURL string
	RedisURL    string

	KafkaBrokers    []string
	KafkaAuditTopic string

	JWTSigningKey string

	DefaultAnnualRatePercent float64
	DefaultBankAgentID       string
	MinAgentAge              int
	SummaryCacheTTL          time.Duration
}

// FromEnv builds a Config from environment variables, applying development
// defaults where unset.
func FromEnv() Config {
	return Config{
		Addr:            envOr("HEARTH_ADDR", ":8080"),
		LogLevel:        envOr("HEARTH_LOG_LEVEL", "info"),
		PostgresURL:     os.Getenv("HEARTH_POSTGRES_URL"),
		RedisURL:        os.Getenv("HEARTH_REDIS_URL"),
		KafkaBrokers:    splitList(os.Getenv("HEARTH_KAFKA_BROKERS")),
		KafkaAuditTopic: envOr("HEARTH_KAFKA_AUDIT_TOPIC", "hearth.audit"),
		// Use a default for development - should be overridden in production.
		JWTSigningKey:            envOr("HEARTH_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DefaultAnnualRatePercent: envFloat("HEARTH_DEFAULT_ANNUAL_RATE", 6.5),
		DefaultBankAgentID:       envOr("HEARTH_DEFAULT_BANK_AGENT_ID", "default-bank-agent"),
		MinAgentAge:              envInt("HEARTH_MIN_AGENT_AGE", 20),
		SummaryCacheTTL:          envDuration("HEARTH_SUMMARY_CACHE_TTL", 30*time.Second),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                      string
	DBPath                    string
	LogLevel                  string
	CurriculumDir             string
	Evaluator                 string // "rule" or "anthropic"
	AnthropicAPIKey           string
	AnthropicModel            string
	SessionActivityLimit      int
	SessionIdleTimeoutMinutes int
	EvaluatorRetryBackoffMs   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                      envOr("ADDR", ":8080"),
		DBPath:                    envOr("DB_PATH", "file:linguaflash.db"),
		LogLevel:                  envOr("LOG_LEVEL", "INFO"),
		CurriculumDir:             envOr("CURRICULUM_DIR", "curriculum"),
		Evaluator:                 envOr("EVALUATOR", "rule"),
		AnthropicAPIKey:           envOr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:            envOr("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		SessionActivityLimit:      envIntOr("SESSION_ACTIVITY_LIMIT", 15),
		SessionIdleTimeoutMinutes: envIntOr("SESSION_IDLE_TIMEOUT_MINUTES", 30),
		EvaluatorRetryBackoffMs:   envIntOr("EVALUATOR_RETRY_BACKOFF_MS", 250),
	}
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

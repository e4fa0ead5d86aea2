package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Embedding provider configuration
	VoyageAPIKey   string
	VoyageAPIURL   string
	EmbeddingModel string
	EmbeddingDim   int

	// Search configuration
	SearchTopK int

	// Import configuration: "insert" (duplicates possible on re-run) or
	// "upsert" (natural key is the recipe title)
	ImportMode string

	// Backfill configuration
	BackfillBatchSize int
	BackfillDelayMs   int

	// Optional LLM configuration for meal suggestions
	DeepSeekAPIKey string
	DeepSeekAPIURL string
}

// LoadConfig creates a new Config instance with values from environment
// variables or secrets. A .env file in the working directory is honored in
// development and test environments.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env == Development || env == Test {
		// Missing .env is fine; variables may come from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "cookbook"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisURL:      os.Getenv("REDIS_URL"),

		VoyageAPIKey:   os.Getenv("VOYAGE_API_KEY"),
		VoyageAPIURL:   getEnv("VOYAGE_API_URL", "https://api.voyageai.com/v1/embeddings"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "voyage-lite-01-instruct"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 1024),

		SearchTopK: getEnvInt("SEARCH_TOP_K", 10),
		ImportMode: getEnv("IMPORT_MODE", "insert"),

		BackfillBatchSize: getEnvInt("BACKFILL_BATCH_SIZE", 100),
		BackfillDelayMs:   getEnvInt("BACKFILL_DELAY_MS", 0),

		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
	}

	// Production deployments keep credentials in Docker secrets rather than
	// the environment.
	if cfg.DBPassword == "" {
		cfg.DBPassword = readSecret("db_password")
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}
	if cfg.VoyageAPIKey == "" {
		cfg.VoyageAPIKey = readSecret("voyage_api_key")
	}
	if cfg.DeepSeekAPIKey == "" {
		cfg.DeepSeekAPIKey = readSecret("deepseek_api_key")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable or the fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the environment variable or the fallback
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

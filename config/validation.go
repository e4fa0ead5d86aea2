package config

import (
	"fmt"
	"strings"

	"github.com/plateful/cookbook/internal/models"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is internally consistent and
// that values required in the current environment are present.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.ServerPort == "" {
		errs = append(errs, "SERVER_PORT must not be empty")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errs = append(errs, "DB_HOST, DB_PORT and DB_NAME must be set")
	}
	// The vector column and index are created with models.EmbeddingDim; a
	// diverging EMBEDDING_DIM would pass the provider check and fail only at
	// insert time, so reject it at startup.
	if cfg.EmbeddingDim != models.EmbeddingDim {
		errs = append(errs, fmt.Sprintf("EMBEDDING_DIM must be %d to match the vector column, got %d", models.EmbeddingDim, cfg.EmbeddingDim))
	}
	if cfg.SearchTopK <= 0 {
		errs = append(errs, "SEARCH_TOP_K must be a positive integer")
	}
	if cfg.ImportMode != "insert" && cfg.ImportMode != "upsert" {
		errs = append(errs, fmt.Sprintf("IMPORT_MODE must be \"insert\" or \"upsert\", got %q", cfg.ImportMode))
	}
	if cfg.BackfillBatchSize <= 0 {
		errs = append(errs, "BACKFILL_BATCH_SIZE must be a positive integer")
	}

	// The embedding API key is only mandatory outside development and test;
	// local runs against an already-embedded dataset do not need it.
	if IsProduction() && cfg.VoyageAPIKey == "" {
		errs = append(errs, "VOYAGE_API_KEY (or voyage_api_key secret) is required in production")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}

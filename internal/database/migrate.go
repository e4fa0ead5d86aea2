package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/plateful/cookbook/internal/models"
)

// RunMigrations prepares the schema. On Postgres this enables the pgvector
// extension, auto-migrates the recipe table and creates the similarity index.
//
// The index below and the embedding column (models.EmbeddingDim) form the one
// compatibility contract in the system: the dimensionality must equal the
// embedding model's output size, and the index opclass must agree with the
// operator used at query time (vector_cosine_ops pairs with <=> in
// RecipeService.VectorSearch). Changing either side alone breaks or silently
// degrades search.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		log.Printf("Using GORM auto-migration for %s", db.Dialector.Name())
		return db.AutoMigrate(&models.Recipe{})
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&models.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate recipe table: %w", err)
	}

	// Lists scale fine without it, but similarity queries need the ANN index.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_recipes_embedding ON recipes USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)",
	).Error; err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}

	log.Printf("Migrations applied")
	return nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/plateful/cookbook/internal/models"
)

// EmbeddingProvider converts free text into a fixed-length vector. The
// external API distinguishes between query and document inputs, so both
// operations are exposed. Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	// EmbedQuery embeds text typed by a user as a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedDocument embeds recipe content for storage.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// IRecipeService defines the interface for recipe store operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, limit int) ([]*models.Recipe, error)
	ListMissingEmbedding(ctx context.Context, batchSize int) ([]*models.Recipe, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	CuisineStats(ctx context.Context) ([]models.CuisineCount, error)
	VectorSearch(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)
	KeywordSearch(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// ISearchService defines the interface for query-to-results search
type ISearchService interface {
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
}

// SearchResult pairs a recipe with its similarity score. Scores are in
// descending order in every result list returned by the services.
type SearchResult struct {
	Recipe *models.Recipe `json:"recipe"`
	Score  float64        `json:"score"`
}

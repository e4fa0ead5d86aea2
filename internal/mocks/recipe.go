package mocks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/plateful/cookbook/internal/models"
	"github.com/plateful/cookbook/internal/service"
)

// MockRecipeStore is a function-field test double for service.IRecipeService.
// Unset methods fail loudly so tests only stub what they use.
type MockRecipeStore struct {
	CreateRecipeFunc         func(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipeFunc            func(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipesFunc          func(ctx context.Context, limit int) ([]*models.Recipe, error)
	ListMissingEmbeddingFunc func(ctx context.Context, batchSize int) ([]*models.Recipe, error)
	UpdateEmbeddingFunc      func(ctx context.Context, id uuid.UUID, embedding []float32) error
	CuisineStatsFunc         func(ctx context.Context) ([]models.CuisineCount, error)
	VectorSearchFunc         func(ctx context.Context, embedding []float32, topK int) ([]service.SearchResult, error)
	KeywordSearchFunc        func(ctx context.Context, query string, topK int) ([]service.SearchResult, error)

	VectorSearchCalls int
}

func (m *MockRecipeStore) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if m.CreateRecipeFunc == nil {
		return nil, fmt.Errorf("unexpected CreateRecipe call")
	}
	return m.CreateRecipeFunc(ctx, recipe)
}

func (m *MockRecipeStore) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	if m.GetRecipeFunc == nil {
		return nil, fmt.Errorf("unexpected GetRecipe call")
	}
	return m.GetRecipeFunc(ctx, id)
}

func (m *MockRecipeStore) ListRecipes(ctx context.Context, limit int) ([]*models.Recipe, error) {
	if m.ListRecipesFunc == nil {
		return nil, fmt.Errorf("unexpected ListRecipes call")
	}
	return m.ListRecipesFunc(ctx, limit)
}

func (m *MockRecipeStore) ListMissingEmbedding(ctx context.Context, batchSize int) ([]*models.Recipe, error) {
	if m.ListMissingEmbeddingFunc == nil {
		return nil, fmt.Errorf("unexpected ListMissingEmbedding call")
	}
	return m.ListMissingEmbeddingFunc(ctx, batchSize)
}

func (m *MockRecipeStore) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	if m.UpdateEmbeddingFunc == nil {
		return fmt.Errorf("unexpected UpdateEmbedding call")
	}
	return m.UpdateEmbeddingFunc(ctx, id, embedding)
}

func (m *MockRecipeStore) CuisineStats(ctx context.Context) ([]models.CuisineCount, error) {
	if m.CuisineStatsFunc == nil {
		return nil, fmt.Errorf("unexpected CuisineStats call")
	}
	return m.CuisineStatsFunc(ctx)
}

func (m *MockRecipeStore) VectorSearch(ctx context.Context, embedding []float32, topK int) ([]service.SearchResult, error) {
	m.VectorSearchCalls++
	if m.VectorSearchFunc == nil {
		return nil, fmt.Errorf("unexpected VectorSearch call")
	}
	return m.VectorSearchFunc(ctx, embedding, topK)
}

func (m *MockRecipeStore) KeywordSearch(ctx context.Context, query string, topK int) ([]service.SearchResult, error) {
	if m.KeywordSearchFunc == nil {
		return nil, fmt.Errorf("unexpected KeywordSearch call")
	}
	return m.KeywordSearchFunc(ctx, query, topK)
}

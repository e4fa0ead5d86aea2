package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/plateful/cookbook/internal/models"
)

// RecipeService handles recipe store operations
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe inserts a new recipe. The title is required.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if strings.TrimSpace(recipe.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedRecord)
	}
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: id %s", ErrDuplicateRecipe, recipe.ID)
		}
		return nil, err
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// GetRecipeByTitle retrieves a recipe by its title. Used by upsert imports,
// where the title acts as the natural key.
func (s *RecipeService) GetRecipeByTitle(ctx context.Context, title string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "title = ?", title).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrRecipeNotFound, title)
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes lists up to limit recipes ordered by title
func (s *RecipeService) ListRecipes(ctx context.Context, limit int) ([]*models.Recipe, error) {
	var recipes []models.Recipe
	query := s.db.WithContext(ctx).Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	result := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// ListMissingEmbedding returns up to batchSize recipes whose embedding has
// not been generated yet. Re-querying re-scans current state, so a backfill
// run simply calls this until it returns an empty batch.
func (s *RecipeService) ListMissingEmbedding(ctx context.Context, batchSize int) ([]*models.Recipe, error) {
	var recipes []models.Recipe
	query := s.db.WithContext(ctx).Where("embedding IS NULL").Order("created_at ASC")
	if batchSize > 0 {
		query = query.Limit(batchSize)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	result := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// UpdateEmbedding writes a generated embedding back to the recipe. This is
// the only mutation the application performs after import.
func (s *RecipeService) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	result := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Update("embedding", &vec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return nil
}

// UpdateRecipeContent replaces the imported fields of an existing recipe and
// clears its embedding, so the next backfill run regenerates it from the new
// content. Used by upsert-mode imports.
func (s *RecipeService) UpdateRecipeContent(ctx context.Context, id uuid.UUID, recipe *models.Recipe) error {
	result := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":             recipe.Title,
		"ingredients":       recipe.Ingredients,
		"instructions":      recipe.Instructions,
		"cuisine":           recipe.Cuisine,
		"difficulty":        recipe.Difficulty,
		"prep_time_minutes": recipe.PrepTimeMinutes,
		"embedding":         nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return nil
}

// CuisineStats counts recipes per cuisine, most common first
func (s *RecipeService) CuisineStats(ctx context.Context) ([]models.CuisineCount, error) {
	var stats []models.CuisineCount
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("COALESCE(NULLIF(cuisine, ''), 'Unspecified') AS cuisine, COUNT(*) AS count").
		Group("COALESCE(NULLIF(cuisine, ''), 'Unspecified')").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// VectorSearch returns up to topK recipes nearest to the given embedding,
// best match first. On Postgres the ranking is delegated to pgvector's cosine
// distance operator; the similarity score is 1 - distance. Recipes without an
// embedding never match. On other dialects (tests) the same ranking is
// computed in process.
func (s *RecipeService) VectorSearch(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	if s.db.Dialector.Name() != "postgres" {
		return s.scanSearch(ctx, embedding, topK)
	}

	vec := pgvector.NewVector(embedding)

	type hit struct {
		ID       uuid.UUID
		Distance float64
	}
	var hits []hit
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("id, embedding <=> ? AS distance", vec).
		Where("embedding IS NOT NULL").
		Order("distance ASC").
		Limit(topK).
		Scan(&hits).Error
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		recipe, ok := byID[h.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{Recipe: recipe, Score: 1 - h.Distance})
	}
	return results, nil
}

// scanSearch ranks all embedded recipes by cosine similarity in process.
// Only used off Postgres, where no vector index exists.
func (s *RecipeService) scanSearch(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Where("embedding IS NOT NULL").Find(&recipes).Error; err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(recipes))
	for i := range recipes {
		if !recipes[i].HasEmbedding() {
			continue
		}
		score := cosineSimilarity(embedding, recipes[i].Embedding.Slice())
		results = append(results, SearchResult{Recipe: &recipes[i], Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// KeywordSearch matches query text against title, ingredients and
// instructions. It backs the fuzzy-search page; no similarity scoring is
// involved, so scores are zero and results are title-ordered.
func (s *RecipeService) KeywordSearch(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	dbQuery := s.db.WithContext(ctx)
	if s.db.Dialector.Name() == "postgres" {
		dbQuery = dbQuery.Where(
			"LOWER(title) LIKE ? OR LOWER(ingredients::text) LIKE ? OR LOWER(instructions) LIKE ?",
			like, like, like,
		)
	} else {
		dbQuery = dbQuery.Where(
			"LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ? OR LOWER(instructions) LIKE ?",
			like, like, like,
		)
	}

	var recipes []models.Recipe
	if err := dbQuery.Order("title ASC").Limit(topK).Find(&recipes).Error; err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(recipes))
	for i := range recipes {
		results[i] = SearchResult{Recipe: &recipes[i]}
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 for
// mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

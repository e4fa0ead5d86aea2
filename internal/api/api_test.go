package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plateful/cookbook/internal/api"
	"github.com/plateful/cookbook/internal/backfill"
	"github.com/plateful/cookbook/internal/database"
	"github.com/plateful/cookbook/internal/mocks"
	"github.com/plateful/cookbook/internal/models"
	"github.com/plateful/cookbook/internal/service"
)

type testEnv struct {
	router *gin.Engine
	store  *service.RecipeService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	store := service.NewRecipeService(db)
	search := service.NewSearchService(store, mocks.NewMockEmbedder(), nil, 0)

	router := gin.New()
	router.GET("/health", api.HealthCheck)
	v1 := router.Group("/api/v1")
	api.NewRecipeHandler(store).RegisterRoutes(v1)
	api.NewSearchHandler(search, store).RegisterRoutes(v1)
	api.NewSuggestionHandler(nil).RegisterRoutes(v1)

	return &testEnv{router: router, store: store}
}

func (e *testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

// seed creates a recipe and, unless embed is false, stores the embedding the
// backfill would have produced for it.
func (e *testEnv) seed(t *testing.T, recipe models.Recipe, embed bool) *models.Recipe {
	t.Helper()
	if embed {
		vec := pgvector.NewVector(mocks.BagOfWordsVector(backfill.EmbeddingInput(&recipe)))
		recipe.Embedding = &vec
	}
	created, err := e.store.CreateRecipe(context.Background(), &recipe)
	require.NoError(t, err)
	return created
}

func TestHealthCheck(t *testing.T) {
	env := setupEnv(t)

	w, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestSearchEndpointRanked(t *testing.T) {
	env := setupEnv(t)
	env.seed(t, models.Recipe{Title: "Spicy Chicken Curry", Ingredients: models.StringArray{"chicken", "curry paste", "chili"}}, true)
	env.seed(t, models.Recipe{Title: "Plain Pasta", Ingredients: models.StringArray{"pasta", "butter"}}, true)
	env.seed(t, models.Recipe{Title: "Unembedded Dish"}, false)

	w, body := env.get(t, "/api/v1/search?q=spicy+chicken+dinner")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spicy chicken dinner", body["query"])

	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, results)
	assert.EqualValues(t, len(results), body["total"])

	first := results[0].(map[string]interface{})
	recipe := first["recipe"].(map[string]interface{})
	assert.Equal(t, "Spicy Chicken Curry", recipe["title"])
	assert.Greater(t, first["score"].(float64), 0.0)

	for _, r := range results {
		title := r.(map[string]interface{})["recipe"].(map[string]interface{})["title"]
		assert.NotEqual(t, "Unembedded Dish", title)
	}
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	env := setupEnv(t)

	w, body := env.get(t, "/api/v1/search?q=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])
}

func TestSearchEndpointLimit(t *testing.T) {
	env := setupEnv(t)
	for i := 0; i < 3; i++ {
		env.seed(t, models.Recipe{
			Title:       fmt.Sprintf("Chicken Dish %d", i),
			Ingredients: models.StringArray{"chicken"},
		}, true)
	}

	w, body := env.get(t, "/api/v1/search?q=chicken&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["results"], 2)
}

func TestKeywordSearchEndpoint(t *testing.T) {
	env := setupEnv(t)
	env.seed(t, models.Recipe{Title: "Garlic Bread", Ingredients: models.StringArray{"bread", "garlic"}}, false)

	w, body := env.get(t, "/api/v1/keyword-search?q=garlic")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, _ = env.get(t, "/api/v1/keyword-search?q=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndGetRecipeEndpoints(t *testing.T) {
	env := setupEnv(t)
	created := env.seed(t, models.Recipe{Title: "Test Dish", Ingredients: models.StringArray{"a", "b"}, Instructions: "x"}, false)

	w, body := env.get(t, "/api/v1/recipes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["recipes"], 1)

	w, body = env.get(t, "/api/v1/recipes/"+created.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test Dish", body["title"])

	w, _ = env.get(t, "/api/v1/recipes/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.get(t, "/api/v1/recipes/00000000-0000-0000-0000-000000000001")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	env := setupEnv(t)
	env.seed(t, models.Recipe{Title: "Carbonara", Cuisine: "Italian"}, false)
	env.seed(t, models.Recipe{Title: "Margherita", Cuisine: "Italian"}, false)
	env.seed(t, models.Recipe{Title: "Mystery Dish"}, false)

	w, body := env.get(t, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	stats, ok := body["cuisine_stats"].([]interface{})
	require.True(t, ok)
	require.Len(t, stats, 2)
	top := stats[0].(map[string]interface{})
	assert.Equal(t, "Italian", top["cuisine"])
	assert.EqualValues(t, 2, top["count"])
}

func TestSuggestionsEndpointUnconfigured(t *testing.T) {
	env := setupEnv(t)

	w, body := env.get(t, "/api/v1/suggestions?ingredients=chicken")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, body["error"])
}

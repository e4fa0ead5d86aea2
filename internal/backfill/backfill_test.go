package backfill_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plateful/cookbook/internal/backfill"
	"github.com/plateful/cookbook/internal/database"
	"github.com/plateful/cookbook/internal/mocks"
	"github.com/plateful/cookbook/internal/models"
	"github.com/plateful/cookbook/internal/service"
)

func setupStore(t *testing.T) *service.RecipeService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return service.NewRecipeService(db)
}

func TestBackfillEmbedsMissingRecipes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	recipe, err := store.CreateRecipe(ctx, &models.Recipe{
		Title:       "Plain Pasta",
		Ingredients: models.StringArray{"pasta", "butter"},
	})
	require.NoError(t, err)

	var gotInput string
	embedder := mocks.NewMockEmbedder()
	embedder.EmbedDocumentFunc = func(ctx context.Context, text string) ([]float32, error) {
		gotInput = text
		return mocks.BagOfWordsVector(text), nil
	}

	runner := backfill.NewRunner(store, embedder, backfill.Config{BatchSize: 10})
	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, "Plain Pasta. Ingredients: pasta, butter", gotInput)

	missing, err := store.ListMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)

	got, err := store.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, got.HasEmbedding())
}

func TestBackfillNothingToDo(t *testing.T) {
	runner := backfill.NewRunner(setupStore(t), mocks.NewMockEmbedder(), backfill.Config{})

	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Embedded)
	assert.Equal(t, 0, report.Failed)
}

// A provider failure on one recipe must not abort the run or block the rest
// of the batch, and the run must still terminate even though the failed
// recipe stays in the missing set.
func TestBackfillContinuesPastFailures(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.CreateRecipe(ctx, &models.Recipe{Title: "Cursed Dish", Ingredients: models.StringArray{"mystery"}})
	require.NoError(t, err)
	_, err = store.CreateRecipe(ctx, &models.Recipe{Title: "Tomato Soup", Ingredients: models.StringArray{"tomato"}})
	require.NoError(t, err)

	embedder := mocks.NewMockEmbedder()
	embedder.EmbedDocumentFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Cursed") {
			return nil, fmt.Errorf("%w: provider rejected input", service.ErrServiceUnavailable)
		}
		return mocks.BagOfWordsVector(text), nil
	}

	runner := backfill.NewRunner(store, embedder, backfill.Config{BatchSize: 1})
	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 1, report.Failed)

	missing, err := store.ListMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "Cursed Dish", missing[0].Title)
}

// Failed records keep their place at the head of the missing listing. With a
// batch size of one, the run must still reach every record behind them.
func TestBackfillFailedRecordsDoNotBlockLaterOnes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, title := range []string{"Cursed Starter", "Cursed Main", "Tomato Soup"} {
		_, err := store.CreateRecipe(ctx, &models.Recipe{Title: title, Ingredients: models.StringArray{"x"}})
		require.NoError(t, err)
	}

	embedder := mocks.NewMockEmbedder()
	embedder.EmbedDocumentFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Cursed") {
			return nil, fmt.Errorf("%w: provider rejected input", service.ErrServiceUnavailable)
		}
		return mocks.BagOfWordsVector(text), nil
	}

	runner := backfill.NewRunner(store, embedder, backfill.Config{BatchSize: 1})
	report, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 2, report.Failed)

	missing, err := store.ListMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	for _, r := range missing {
		assert.Contains(t, r.Title, "Cursed")
	}
}

func TestBackfillRespectsContextCancellation(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := store.CreateRecipe(ctx, &models.Recipe{Title: "Test Dish", Ingredients: models.StringArray{"a"}})
	require.NoError(t, err)

	cancel()
	runner := backfill.NewRunner(store, mocks.NewMockEmbedder(), backfill.Config{BatchSize: 10})
	_, err = runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Package backfill generates embeddings for recipes that do not have one yet.
package backfill

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plateful/cookbook/internal/models"
	"github.com/plateful/cookbook/internal/service"
)

// RecipeStore is the slice of the store the backfill needs.
type RecipeStore interface {
	ListMissingEmbedding(ctx context.Context, batchSize int) ([]*models.Recipe, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

// Config holds configuration for a backfill run.
type Config struct {
	// BatchSize is how many missing-embedding recipes are fetched per query.
	BatchSize int
	// Delay is an optional pause between provider calls, to stay under
	// rate limits.
	Delay time.Duration
}

// Report summarizes one backfill run.
type Report struct {
	Embedded int
	Failed   int
}

// Runner walks all recipes lacking an embedding, generates one per recipe
// and writes it back. A failure on one recipe is logged and the run
// continues; only store iteration errors abort it. Records are processed
// sequentially, so concurrent runs may race on the same record. The run is
// safe to repeat.
type Runner struct {
	store    RecipeStore
	provider service.EmbeddingProvider
	config   Config
}

// NewRunner creates a new backfill runner
func NewRunner(store RecipeStore, provider service.EmbeddingProvider, config Config) *Runner {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Runner{store: store, provider: provider, config: config}
}

// Run processes every recipe currently missing an embedding.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	attempted := make(map[uuid.UUID]bool)

	for {
		// Failed recipes stay in the missing set and keep their place at the
		// head of the listing, so widen the window by the failure count to
		// reach the records behind them. Dropping already-attempted records
		// guarantees termination; an empty remainder means every record still
		// missing has been tried.
		batch, err := r.store.ListMissingEmbedding(ctx, r.config.BatchSize+report.Failed)
		if err != nil {
			return report, fmt.Errorf("failed to list recipes missing embeddings: %w", err)
		}

		var fresh []*models.Recipe
		for _, recipe := range batch {
			if !attempted[recipe.ID] {
				fresh = append(fresh, recipe)
			}
		}
		if len(fresh) == 0 {
			break
		}

		for _, recipe := range fresh {
			attempted[recipe.ID] = true

			if err := ctx.Err(); err != nil {
				return report, err
			}

			if err := r.backfillOne(ctx, recipe); err != nil {
				log.Printf("Failed to embed recipe %q (%s): %v", recipe.Title, recipe.ID, err)
				report.Failed++
			} else {
				report.Embedded++
			}

			if r.config.Delay > 0 {
				time.Sleep(r.config.Delay)
			}
		}
	}

	log.Printf("Backfill finished: %d embedded, %d failed", report.Embedded, report.Failed)
	return report, nil
}

func (r *Runner) backfillOne(ctx context.Context, recipe *models.Recipe) error {
	embedding, err := r.provider.EmbedDocument(ctx, EmbeddingInput(recipe))
	if err != nil {
		return err
	}
	return r.store.UpdateEmbedding(ctx, recipe.ID, embedding)
}

// EmbeddingInput builds the text that represents a recipe for embedding
// purposes: the title plus the ingredient list. Query embeddings are matched
// against this text, so changing its shape requires re-embedding the whole
// store.
func EmbeddingInput(recipe *models.Recipe) string {
	return fmt.Sprintf("%s. Ingredients: %s", recipe.Title, strings.Join(recipe.Ingredients, ", "))
}

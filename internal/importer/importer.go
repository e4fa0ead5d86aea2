// Package importer loads recipes from a static JSON file into the store.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/plateful/cookbook/internal/models"
	"github.com/plateful/cookbook/internal/service"
)

// Mode controls what happens when the source file is imported again.
type Mode string

const (
	// ModeInsert always inserts. Re-running the import on the same file
	// creates duplicate recipes.
	ModeInsert Mode = "insert"
	// ModeUpsert treats the title as a natural key: an existing recipe with
	// the same title is updated in place and its embedding cleared.
	ModeUpsert Mode = "upsert"
)

// RecipeStore is the slice of the store the importer needs.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetRecipeByTitle(ctx context.Context, title string) (*models.Recipe, error)
	UpdateRecipeContent(ctx context.Context, id uuid.UUID, recipe *models.Recipe) error
}

// sourceRecord is one entry of the import file. Only title and ingredients
// are load-bearing; everything else is optional. "description" is accepted as
// an alias for "instructions" for older exports.
type sourceRecord struct {
	Title           string   `json:"title"`
	Ingredients     []string `json:"ingredients"`
	Instructions    string   `json:"instructions"`
	Description     string   `json:"description"`
	Cuisine         string   `json:"cuisine"`
	Difficulty      string   `json:"difficulty"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
}

// Report summarizes one import run.
type Report struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Importer reads a JSON array of recipes and writes them to the store.
// Malformed records are skipped and reported; a single bad record never
// aborts the run.
type Importer struct {
	store RecipeStore
	mode  Mode
}

// New creates a new Importer
func New(store RecipeStore, mode Mode) *Importer {
	if mode != ModeUpsert {
		mode = ModeInsert
	}
	return &Importer{store: store, mode: mode}
}

// ImportFile imports all recipes from the JSON file at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return im.Import(ctx, data)
}

// Import imports all recipes from raw JSON data.
func (im *Importer) Import(ctx context.Context, data []byte) (*Report, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("import source is not a JSON array: %w", err)
	}

	report := &Report{}
	for i, raw := range records {
		if err := im.importRecord(ctx, raw, report); err != nil {
			if errors.Is(err, service.ErrMalformedRecord) {
				log.Printf("Skipping record %d: %v", i, err)
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("record %d: %w", i, err)
		}
	}

	log.Printf("Import finished: %d inserted, %d updated, %d skipped",
		report.Inserted, report.Updated, report.Skipped)
	return report, nil
}

func (im *Importer) importRecord(ctx context.Context, raw json.RawMessage, report *Report) error {
	var rec sourceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("%w: %v", service.ErrMalformedRecord, err)
	}

	if strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("%w: missing title", service.ErrMalformedRecord)
	}

	instructions := rec.Instructions
	if instructions == "" {
		instructions = rec.Description
	}

	recipe := &models.Recipe{
		Title:           strings.TrimSpace(rec.Title),
		Ingredients:     models.StringArray(rec.Ingredients),
		Instructions:    instructions,
		Cuisine:         rec.Cuisine,
		Difficulty:      rec.Difficulty,
		PrepTimeMinutes: rec.PrepTimeMinutes,
	}

	if im.mode == ModeUpsert {
		existing, err := im.store.GetRecipeByTitle(ctx, recipe.Title)
		if err == nil {
			if err := im.store.UpdateRecipeContent(ctx, existing.ID, recipe); err != nil {
				return err
			}
			report.Updated++
			return nil
		}
		if !errors.Is(err, service.ErrRecipeNotFound) {
			return err
		}
	}

	if _, err := im.store.CreateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, service.ErrDuplicateRecipe) {
			return fmt.Errorf("%w: %v", service.ErrMalformedRecord, err)
		}
		return err
	}
	report.Inserted++
	return nil
}

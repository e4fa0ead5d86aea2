package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the dimensionality of the embedding column. It must match
// the output size of the configured embedding model and the dimension used
// when the vector index was created (see database.RunMigrations). A mismatch
// makes similarity queries fail or silently degrade. Struct tags cannot
// reference constants, so the Embedding field repeats the value; config
// validation rejects any EMBEDDING_DIM that diverges from it at startup.
const EmbeddingDim = 1024

// StringArray is a custom type for handling string arrays in JSONB
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is one dish. Embedding is nil until the backfill utility has run
// for the record, and is cleared again whenever the content changes.
type Recipe struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Ingredients     StringArray      `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    string           `gorm:"type:text" json:"instructions"`
	Cuisine         string           `gorm:"size:100" json:"cuisine"`
	Difficulty      string           `gorm:"size:50" json:"difficulty"`
	PrepTimeMinutes int              `json:"prep_time_minutes"`
	Embedding       *pgvector.Vector `gorm:"type:vector(1024)" json:"-"`
}

// HasEmbedding reports whether the recipe already carries an embedding.
func (r *Recipe) HasEmbedding() bool {
	return r.Embedding != nil && len(r.Embedding.Slice()) > 0
}

// CuisineCount is one row of the cuisine statistics aggregation.
type CuisineCount struct {
	Cuisine string `json:"cuisine"`
	Count   int64  `json:"count"`
}

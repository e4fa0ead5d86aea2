package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTopK is used when no result limit is configured.
	DefaultTopK = 10
	// MaxTopK caps result limits, configured or caller-supplied.
	MaxTopK = 50

	queryCacheTTL = 24 * time.Hour
)

// SearchService turns free-text queries into ranked recipe results. It holds
// no state between calls; the optional redis client only caches query
// embeddings so that repeated searches skip the provider round trip.
type SearchService struct {
	store       IRecipeService
	provider    EmbeddingProvider
	redis       *redis.Client
	defaultTopK int
}

// NewSearchService creates a new SearchService instance. redisClient may be
// nil, in which case no embedding cache is used. defaultTopK is the result
// limit applied when a caller supplies none (SEARCH_TOP_K); values outside
// (0, MaxTopK] fall back to DefaultTopK.
func NewSearchService(store IRecipeService, provider EmbeddingProvider, redisClient *redis.Client, defaultTopK int) *SearchService {
	if defaultTopK <= 0 || defaultTopK > MaxTopK {
		defaultTopK = DefaultTopK
	}
	return &SearchService{
		store:       store,
		provider:    provider,
		redis:       redisClient,
		defaultTopK: defaultTopK,
	}
}

// Search validates the query, embeds it and runs a similarity query against
// the store. Zero matches yield an empty slice, not an error. topK <= 0
// selects the configured default; values above MaxTopK are clamped.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	embedding, err := s.queryEmbedding(ctx, query)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	results, err := s.store.VectorSearch(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

// queryEmbedding returns the embedding for a query, consulting the redis
// cache first. Cache failures are logged and ignored; the provider is the
// source of truth.
func (s *SearchService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	key := queryCacheKey(query)

	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var embedding []float32
			if err := json.Unmarshal(data, &embedding); err == nil && len(embedding) > 0 {
				return embedding, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("embedding cache read failed: %v", err)
		}
	}

	embedding, err := s.provider.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(embedding); err == nil {
			if err := s.redis.Set(ctx, key, data, queryCacheTTL).Err(); err != nil {
				log.Printf("embedding cache write failed: %v", err)
			}
		}
	}

	return embedding, nil
}

func queryCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return "embedding:query:" + hex.EncodeToString(sum[:])
}

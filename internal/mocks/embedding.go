// Package mocks provides test doubles for the service interfaces.
package mocks

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// EmbedderDim is the dimensionality of mock embeddings. Kept small; tests
// never touch a real vector index.
const EmbedderDim = 64

// MockEmbedder is a test double for service.EmbeddingProvider. Behavior can
// be overridden per call via the function fields; the default produces a
// deterministic bag-of-words vector, so texts sharing words come out more
// similar than unrelated ones.
type MockEmbedder struct {
	EmbedQueryFunc    func(ctx context.Context, text string) ([]float32, error)
	EmbedDocumentFunc func(ctx context.Context, text string) ([]float32, error)

	QueryCalls    int
	DocumentCalls int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedQuery implements service.EmbeddingProvider.
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.QueryCalls++
	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return BagOfWordsVector(text), nil
}

// EmbedDocument implements service.EmbeddingProvider.
func (m *MockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	m.DocumentCalls++
	if m.EmbedDocumentFunc != nil {
		return m.EmbedDocumentFunc(ctx, text)
	}
	return BagOfWordsVector(text), nil
}

// Calls returns the total number of embedding calls.
func (m *MockEmbedder) Calls() int {
	return m.QueryCalls + m.DocumentCalls
}

// BagOfWordsVector hashes each word of the text into a fixed-size vector and
// normalizes the result. Deterministic, and cosine similarity between two
// such vectors grows with word overlap.
func BagOfWordsVector(text string) []float32 {
	vec := make([]float32, EmbedderDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%EmbedderDim]++
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(math.Sqrt(sumSquares))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

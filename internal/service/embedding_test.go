package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/cookbook/config"
	"github.com/plateful/cookbook/internal/service"
)

func newTestVoyageClient(t *testing.T, handler http.HandlerFunc, dim int) *service.VoyageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := service.NewVoyageClient(&config.Config{
		VoyageAPIKey:   "test-key",
		VoyageAPIURL:   srv.URL,
		EmbeddingModel: "voyage-lite-01-instruct",
		EmbeddingDim:   dim,
	})
	require.NoError(t, err)
	return client
}

func embeddingHandler(embedding []float32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": embedding}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestVoyageClientEmbedQuery(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestVoyageClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		embeddingHandler([]float32{0.1, 0.2, 0.3})(w, r)
	}, 3)

	embedding, err := client.EmbedQuery(context.Background(), "spicy dinner")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	assert.Equal(t, "query", gotBody["input_type"])
	assert.Equal(t, "voyage-lite-01-instruct", gotBody["model"])
}

func TestVoyageClientEmbedDocumentInputType(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestVoyageClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		embeddingHandler([]float32{1, 0})(w, r)
	}, 2)

	_, err := client.EmbedDocument(context.Background(), "Pasta. Ingredients: pasta")
	require.NoError(t, err)
	assert.Equal(t, "document", gotBody["input_type"])
}

func TestVoyageClientErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, service.ErrRateLimited},
		{"bad request", http.StatusBadRequest, service.ErrInvalidInput},
		{"unauthorized", http.StatusUnauthorized, service.ErrInvalidInput},
		{"server error", http.StatusInternalServerError, service.ErrServiceUnavailable},
		{"bad gateway", http.StatusBadGateway, service.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestVoyageClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}, 0)

			_, err := client.EmbedQuery(context.Background(), "anything")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVoyageClientEmptyInput(t *testing.T) {
	called := false
	client := newTestVoyageClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, 0)

	_, err := client.EmbedQuery(context.Background(), "   ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.False(t, called, "empty input must be rejected before the network call")
}

func TestVoyageClientDimensionMismatch(t *testing.T) {
	client := newTestVoyageClient(t, embeddingHandler([]float32{1, 2, 3}), 1024)

	_, err := client.EmbedQuery(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestVoyageClientRequiresAPIKey(t *testing.T) {
	_, err := service.NewVoyageClient(&config.Config{})
	assert.Error(t, err)
}

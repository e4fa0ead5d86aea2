package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plateful/cookbook/config"
)

// VoyageClient calls the Voyage AI embeddings API. It keeps no local state
// beyond the HTTP client; every call is independent and no retries are
// attempted. The configured model's output dimensionality must match the
// vector column (models.EmbeddingDim).
type VoyageClient struct {
	apiKey     string
	apiURL     string
	model      string
	dim        int
	httpClient *http.Client
}

// NewVoyageClient creates a new VoyageClient from configuration.
func NewVoyageClient(cfg *config.Config) (*VoyageClient, error) {
	if cfg.VoyageAPIKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY must be set")
	}

	return &VoyageClient{
		apiKey: cfg.VoyageAPIKey,
		apiURL: cfg.VoyageAPIURL,
		model:  cfg.EmbeddingModel,
		dim:    cfg.EmbeddingDim,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// embedRequest is the request body for the embeddings endpoint
type embedRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

// embedResponse is the response from the embeddings endpoint
type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedQuery embeds user search input.
func (c *VoyageClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, "query")
}

// EmbedDocument embeds recipe content for storage.
func (c *VoyageClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, "document")
}

func (c *VoyageClient) embed(ctx context.Context, text, inputType string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}

	body, err := json.Marshal(embedRequest{
		Input:     []string{text},
		Model:     c.model,
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrInvalidInput, resp.StatusCode, strings.TrimSpace(string(msg)))
	default:
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrServiceUnavailable, err)
	}

	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrServiceUnavailable)
	}

	embedding := result.Data[0].Embedding
	if c.dim > 0 && len(embedding) != c.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: model returned %d, expected %d", len(embedding), c.dim)
	}

	return embedding, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/plateful/cookbook/config"
)

// SuggestionService produces meal suggestions for a set of ingredients by
// combining a vector search over stored recipes with a chat-completions LLM.
// The feature is optional: without an API key the service is nil and the
// handler reports it as unavailable.
type SuggestionService struct {
	apiKey     string
	apiURL     string
	search     ISearchService
	httpClient *http.Client
}

// NewSuggestionService creates a new SuggestionService, or nil if no API key
// is configured.
func NewSuggestionService(cfg *config.Config, search ISearchService) *SuggestionService {
	if cfg.DeepSeekAPIKey == "" {
		return nil
	}
	return &SuggestionService{
		apiKey: cfg.DeepSeekAPIKey,
		apiURL: cfg.DeepSeekAPIURL,
		search: search,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatMessage represents a message in the chat
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest represents a request to the chat completions API
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse represents a response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// suggestionContext is the recipe data handed to the LLM as grounding.
type suggestionContext struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Score       float64  `json:"score"`
}

// Suggest returns up to maxSuggestions meal ideas for the given ingredients.
func (s *SuggestionService) Suggest(ctx context.Context, ingredients []string, maxSuggestions int) ([]string, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients given", ErrInvalidQuery)
	}
	if maxSuggestions <= 0 {
		maxSuggestions = 4
	}

	// Ground the LLM on recipes similar to the ingredient list.
	query := "Ingredients: " + strings.Join(ingredients, ", ")
	results, err := s.search.Search(ctx, query, DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuggestionsUnavailable, err)
	}

	similar := make([]suggestionContext, 0, len(results))
	for _, r := range results {
		similar = append(similar, suggestionContext{
			Title:       r.Recipe.Title,
			Ingredients: r.Recipe.Ingredients,
			Score:       r.Score,
		})
	}

	recipesJSON, err := json.MarshalIndent(similar, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe context: %w", err)
	}

	prompt := fmt.Sprintf(`I have these ingredients: %s

Based on these ingredients, I need %d meal suggestions.
Here are some similar recipes from my database that might help you:

%s

For each suggestion, provide a recipe name, which of my ingredients it uses,
substitutions for anything missing, a brief preparation description, and a
difficulty level (easy, medium, hard). Number each suggestion. Keep the answer
concise and focused on the meal suggestions.`,
		strings.Join(ingredients, ", "), maxSuggestions, recipesJSON)

	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuggestionsUnavailable, err)
	}

	suggestions := splitSuggestions(text)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

func (s *SuggestionService) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: "deepseek-chat",
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful cooking assistant that provides meal suggestions based on available ingredients."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// splitSuggestions breaks the LLM output into one string per numbered
// suggestion ("1. ..." or "1) ...").
func splitSuggestions(text string) []string {
	var suggestions []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			suggestions = append(suggestions, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 3 && trimmed[0] >= '1' && trimmed[0] <= '9' &&
			(trimmed[1] == '.' || trimmed[1] == ')') && trimmed[2] == ' ' {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return suggestions
}

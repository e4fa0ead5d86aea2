package service

import "errors"

// Error kinds surfaced by the services. Every one of these is scoped to a
// single request or a single utility invocation; none is fatal to the
// process.
var (
	// ErrInvalidQuery indicates empty or whitespace-only search input.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrSearchUnavailable indicates the embedding provider could not be
	// reached while serving a search. Retryable from the caller's side.
	ErrSearchUnavailable = errors.New("search temporarily unavailable")

	// ErrRecipeNotFound indicates a lookup miss by recipe ID.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrDuplicateRecipe indicates an identifier collision on insert.
	ErrDuplicateRecipe = errors.New("recipe already exists")

	// ErrMalformedRecord indicates an import source record that cannot be
	// turned into a valid recipe. The record is skipped, the import continues.
	ErrMalformedRecord = errors.New("malformed import record")

	// ErrInvalidInput indicates the embedding provider rejected the input text.
	ErrInvalidInput = errors.New("embedding provider rejected input")

	// ErrRateLimited indicates the embedding provider throttled the call.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrServiceUnavailable indicates the embedding provider is unreachable
	// or failing.
	ErrServiceUnavailable = errors.New("embedding provider unavailable")

	// ErrSuggestionsUnavailable indicates the suggestion LLM is not
	// configured or failed.
	ErrSuggestionsUnavailable = errors.New("meal suggestions unavailable")
)

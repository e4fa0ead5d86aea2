package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plateful/cookbook/internal/service"
)

// SuggestionHandler serves LLM-backed meal suggestions. suggestions may be
// nil when the feature is not configured.
type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

// RegisterRoutes registers the JSON API routes
func (h *SuggestionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/suggestions", h.Suggest)
}

// Suggest returns meal suggestions for a comma-separated ingredients parameter.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	if h.suggestions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "meal suggestions are not configured"})
		return
	}

	ingredients := splitIngredients(c.Query("ingredients"))
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredients parameter is required"})
		return
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), ingredients, 4)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to generate suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingredients": ingredients,
		"suggestions": suggestions,
	})
}

// splitIngredients splits a comma-separated ingredient list, dropping blanks.
func splitIngredients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

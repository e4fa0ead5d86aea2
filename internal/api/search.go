package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plateful/cookbook/internal/service"
)

// SearchHandler serves semantic and keyword search endpoints.
type SearchHandler struct {
	search  service.ISearchService
	recipes service.IRecipeService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search service.ISearchService, recipes service.IRecipeService) *SearchHandler {
	return &SearchHandler{search: search, recipes: recipes}
}

// RegisterRoutes registers the JSON API routes
func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search", h.Search)
	router.GET("/keyword-search", h.KeywordSearch)
}

// Search runs a semantic similarity search for the q parameter.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	topK := parseLimit(c.Query("limit"))

	results, err := h.search.Search(c.Request.Context(), query, topK)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
			return
		}
		c.JSON(statusForError(err), gin.H{"error": "search failed, please retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

// KeywordSearch runs a plain text match over title, ingredients and
// instructions.
func (h *SearchHandler) KeywordSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	results, err := h.recipes.KeywordSearch(c.Request.Context(), query, parseLimit(c.Query("limit")))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "search failed, please retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

// parseLimit parses a limit parameter, returning 0 (service default) when
// absent or invalid.
func parseLimit(v string) int {
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return 0
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plateful/cookbook/internal/service"
)

// PageHandler renders the HTML pages: search form, results, recipe detail,
// top recipes and cuisine statistics. It holds no state beyond the services
// it delegates to.
type PageHandler struct {
	search      service.ISearchService
	recipes     service.IRecipeService
	suggestions *service.SuggestionService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(search service.ISearchService, recipes service.IRecipeService, suggestions *service.SuggestionService) *PageHandler {
	return &PageHandler{search: search, recipes: recipes, suggestions: suggestions}
}

// RegisterRoutes registers the HTML page routes
func (h *PageHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Index)
	router.GET("/search", h.SearchPage)
	router.GET("/recipes", h.TopRecipes)
	router.GET("/recipes/:id", h.RecipeDetail)
	router.GET("/stats", h.StatsPage)
	router.GET("/suggestions", h.SuggestionsPage)
}

// Index renders the search form.
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// SearchPage renders ranked results for the q parameter. An empty q just
// shows the form again.
func (h *PageHandler) SearchPage(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.HTML(http.StatusOK, "search.html", gin.H{})
		return
	}

	results, err := h.search.Search(c.Request.Context(), query, parseLimit(c.Query("limit")))
	if err != nil {
		status := statusForError(err)
		msg := "Search is temporarily unavailable, please try again."
		if errors.Is(err, service.ErrInvalidQuery) {
			msg = "Please enter a search query."
		}
		c.HTML(status, "search.html", gin.H{"query": query, "error": msg})
		return
	}

	c.HTML(http.StatusOK, "search.html", gin.H{
		"query":   query,
		"results": results,
	})
}

// TopRecipes renders a title-ordered recipe listing.
func (h *PageHandler) TopRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context(), defaultListLimit)
	if err != nil {
		c.HTML(statusForError(err), "recipes.html", gin.H{"error": "Failed to load recipes."})
		return
	}
	c.HTML(http.StatusOK, "recipes.html", gin.H{"recipes": recipes})
}

// RecipeDetail renders one recipe.
func (h *PageHandler) RecipeDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "recipe.html", gin.H{"error": "No such recipe."})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.HTML(statusForError(err), "recipe.html", gin.H{"error": "No such recipe."})
		return
	}

	c.HTML(http.StatusOK, "recipe.html", gin.H{"recipe": recipe})
}

// StatsPage renders the cuisine breakdown.
func (h *PageHandler) StatsPage(c *gin.Context) {
	stats, err := h.recipes.CuisineStats(c.Request.Context())
	if err != nil {
		c.HTML(statusForError(err), "stats.html", gin.H{"error": "Failed to load statistics."})
		return
	}
	c.HTML(http.StatusOK, "stats.html", gin.H{"stats": stats})
}

// SuggestionsPage renders LLM meal suggestions for an ingredient list.
func (h *PageHandler) SuggestionsPage(c *gin.Context) {
	raw := c.Query("ingredients")
	if raw == "" {
		c.HTML(http.StatusOK, "suggestions.html", gin.H{})
		return
	}

	if h.suggestions == nil {
		c.HTML(http.StatusServiceUnavailable, "suggestions.html", gin.H{
			"ingredients": raw,
			"error":       "Meal suggestions are not configured.",
		})
		return
	}

	suggestions, err := h.suggestions.Suggest(c.Request.Context(), splitIngredients(raw), 4)
	if err != nil {
		c.HTML(statusForError(err), "suggestions.html", gin.H{
			"ingredients": raw,
			"error":       "Could not generate suggestions, please try again.",
		})
		return
	}

	c.HTML(http.StatusOK, "suggestions.html", gin.H{
		"ingredients": raw,
		"suggestions": suggestions,
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plateful/cookbook/internal/service"
)

const defaultListLimit = 20

// RecipeHandler serves recipe listing, detail and statistics endpoints.
type RecipeHandler struct {
	recipes service.IRecipeService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipes service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes registers the JSON API routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}
	router.GET("/stats", h.CuisineStats)
}

// ListRecipes returns recipes ordered by title.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe returns one recipe by ID.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CuisineStats returns the per-cuisine recipe counts.
func (h *RecipeHandler) CuisineStats(c *gin.Context) {
	stats, err := h.recipes.CuisineStats(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cuisine_stats": stats})
}

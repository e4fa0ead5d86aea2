package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateful/cookbook/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Cookbook API is running",
	})
}

// statusForError maps service error kinds to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSearchUnavailable),
		errors.Is(err, service.ErrSuggestionsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/plateful/cookbook/config"
	"github.com/plateful/cookbook/internal/api"
	"github.com/plateful/cookbook/internal/database"
	"github.com/plateful/cookbook/internal/middleware"
	"github.com/plateful/cookbook/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
}

// Options carries the externally constructed clients the server depends on.
// Redis and the suggestion service are optional.
type Options struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Provider    service.EmbeddingProvider
	TemplateDir string
}

// New creates a new server instance and wires all routes.
func New(cfg *config.Config, opts Options) *Server {
	router := gin.Default()
	router.Use(middleware.CORS())

	templateDir := opts.TemplateDir
	if templateDir == "" {
		templateDir = "templates"
	}
	router.LoadHTMLGlob(templateDir + "/*.html")

	recipeService := service.NewRecipeService(opts.DB)
	searchService := service.NewSearchService(recipeService, opts.Provider, opts.Redis, cfg.SearchTopK)
	suggestionService := service.NewSuggestionService(cfg, searchService)
	if suggestionService == nil {
		log.Printf("Meal suggestions disabled: no LLM API key configured")
	}

	pageHandler := api.NewPageHandler(searchService, recipeService, suggestionService)
	searchHandler := api.NewSearchHandler(searchService, recipeService)
	recipeHandler := api.NewRecipeHandler(recipeService)
	suggestionHandler := api.NewSuggestionHandler(suggestionService)

	pageHandler.RegisterRoutes(router)

	router.GET("/health", api.HealthCheck)
	router.GET("/health/db", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), opts.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	if opts.Redis != nil {
		searchLimiter := middleware.NewSearchRateLimiter(opts.Redis)
		v1.Use(searchLimiter.RateLimitMiddleware())
	} else {
		log.Printf("Warning: Redis unavailable, API rate limiting disabled")
	}
	searchHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	suggestionHandler.RegisterRoutes(v1)

	return &Server{
		router: router,
		cfg:    cfg,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Handlers groups every API handler mounted under /api.
type Handlers struct {
	Auth    *api.AuthHandler
	Users   *api.UserHandler
	Catalog *api.CatalogHandler
	Recipes *api.RecipeHandler
	Health  *api.HealthHandler
}

// Options configures the engine-level middleware.
type Options struct {
	AllowedOrigins []string
	// Registry receives the HTTP metrics. Nil disables /metrics.
	Registry *prometheus.Registry
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.Registry != nil {
		router.Use(middleware.NewMetrics(opts.Registry).Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/health", h.Health.Health)

	apiGroup := router.Group("/api")
	apiGroup.GET("/health", h.Health.Health)
	h.Auth.RegisterRoutes(apiGroup)
	h.Users.RegisterRoutes(apiGroup)
	h.Catalog.RegisterRoutes(apiGroup)
	h.Recipes.RegisterRoutes(apiGroup)

	return router
}

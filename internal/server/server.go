package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New wires services and handlers. redisClient and blobs may be nil; logout
// revocation, rate limiting and image uploads are then disabled.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.BlobStore) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	var denylist service.TokenDenylist
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, denylist)
	pager := api.Pager{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Users:   api.NewUserHandler(service.NewUserService(db), service.NewSubscriptionService(db), authService, pager),
		Catalog: api.NewCatalogHandler(service.NewCatalogService(db)),
		Recipes: api.NewRecipeHandler(
			service.NewRecipeService(db, service.NewImageService(blobs)),
			service.NewFavoriteService(db),
			service.NewShoppingCartService(db),
			service.NewShoppingListService(db),
			authService,
			middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit),
			pager,
		),
		Health: api.NewHealthHandler(db),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := router.SetupRouter(handlers, router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Registry:       registry,
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the routed engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

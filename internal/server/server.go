package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/vinoteca/backend/config"
	"github.com/pageza/vinoteca/backend/internal/api"
	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/middleware"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the external resources the server is built on. Redis is optional.
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client
	LLM   service.LLMClient
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

// New wires services, middleware and routes.
func New(cfg *config.Config, deps Dependencies, log *zap.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins),
	)

	catalog := service.NewCatalogService(database.NewCatalogStore(deps.DB), log.Named("catalog"))
	recommender := service.NewRecommendationService(catalog, deps.LLM, service.NewAuditLog(deps.DB),
		service.RecommendationConfig{
			MaxTokens:     cfg.LLMMaxTokens,
			StreamTimeout: cfg.LLMStreamTimeout,
		}, log.Named("recommendation"))
	wineInfo := service.NewWineInfoService(deps.LLM, deps.Redis,
		service.WineInfoConfig{
			MaxTokens:     cfg.WineInfoMaxTokens,
			StreamTimeout: cfg.LLMStreamTimeout,
		}, log.Named("wine_info"))

	limiter := middleware.NewAIRateLimiter(deps.Redis, cfg.RateLimitRequests, cfg.RateLimitWindow)
	if limiter == nil {
		log.Info("AI rate limiting disabled")
	}

	api.RegisterRoutes(router, api.Dependencies{
		DB:            deps.DB,
		Catalog:       catalog,
		Recommender:   recommender,
		WineInfo:      wineInfo,
		Cellar:        service.NewCellarService(deps.DB),
		AIRateLimiter: limiter,
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// streams may run for the whole model timeout
			WriteTimeout: cfg.LLMStreamTimeout + 30*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx ends,
// then closes whatever is left.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("graceful shutdown timed out, closing open connections")
		return s.http.Close()
	}
	return err
}

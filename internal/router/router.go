package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/api"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/middleware"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/service"
)

// Deps holds everything the routes are built from. RateLimiter, Metrics and
// Health may be nil.
type Deps struct {
	Config      *config.Config
	Kitchen     service.IKitchenService
	Runs        service.IRunService
	Auth        service.IAuthService
	Health      func(ctx context.Context) error
	RateLimiter *middleware.RateLimiter
	Metrics     http.Handler
	Logger      *slog.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Deps) *gin.Engine {
	var router *gin.Engine
	if config.IsProduction() {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}

	router.Use(middleware.CORS(deps.Config.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler(deps.Logger))

	api.NewHealthHandler(deps.Health).RegisterRoutes(router)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Engine callbacks
	api.NewIngestHandler(deps.Kitchen).RegisterRoutes(v1, middleware.IngestAuth(deps.Config.IngestToken))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	{
		var limits []gin.HandlerFunc
		if deps.RateLimiter != nil {
			limits = append(limits, deps.RateLimiter.RateLimitMiddleware())
		}
		api.NewPipelineHandler(deps.Kitchen).RegisterRoutes(protected, limits...)
		api.NewInventoryHandler(deps.Kitchen).RegisterRoutes(protected)
		api.NewShoppingHandler(deps.Kitchen).RegisterRoutes(protected)
		api.NewProfileHandler(deps.Kitchen).RegisterRoutes(protected)
		api.NewEventsHandler(deps.Kitchen).RegisterRoutes(protected)
		if deps.Runs != nil {
			api.NewRunHandler(deps.Runs).RegisterRoutes(protected)
		}
	}

	return router
}

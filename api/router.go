package api

import (
	"net/http"

	"ordersvc/api/health"
	"ordersvc/api/item"
	"ordersvc/api/middleware"
	"ordersvc/api/order"
	"ordersvc/config"
	"ordersvc/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router Route configuration
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	healthController *health.Controller
	orderController  *order.Controller
	itemController   *item.Controller
}

func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	orderController *order.Controller,
	itemController *item.Controller,
) *Router {
	switch {
	case cfg.IsDevelopment():
		gin.SetMode(gin.DebugMode)
	case cfg.App.Env == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Order matters: the request id must exist before anything logs.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	if cfg.Metrics.Enabled {
		engine.Use(middleware.MetricsMiddleware())
	}
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:           engine,
		config:           cfg,
		healthController: healthController,
		orderController:  orderController,
		itemController:   itemController,
	}
}

// SetupRoutes registers probes and metrics at the root and the business
// API under /api/v1, behind authentication.
func (r *Router) SetupRoutes() {
	r.healthController.RegisterRoutes(r.engine)
	if r.config.Metrics.Enabled {
		r.engine.GET(r.config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	apiGroup := r.engine.Group("/api/v1", middleware.AuthMiddleware(&r.config.Auth))
	{
		r.orderController.RegisterRoutes(apiGroup)
		r.itemController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

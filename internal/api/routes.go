// Package api provides the HTTP API for the entitlement server.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/api/handlers"
	"github.com/nexorasim/entitlement/internal/api/middleware"
	"github.com/nexorasim/entitlement/internal/auth"
	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/config"
	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/entitlement"
)

// Config holds configuration for the API router.
type Config struct {
	// Environment controls CORS strictness.
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed in dev mode.
	AllowedOrigins []string
	// RateLimitRequests is the per-caller budget per RateLimitPeriod.
	RateLimitRequests int64
	RateLimitPeriod   time.Duration
	// Version information for the version endpoint.
	Version   string
	Commit    string
	BuildDate string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:       config.EnvDevelopment,
		AllowedOrigins:    []string{},
		RateLimitRequests: 100,
		RateLimitPeriod:   time.Minute,
		Version:           "dev",
		Commit:            "unknown",
		BuildDate:         "unknown",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
	db     *db.DB
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(
	cfg Config,
	database *db.DB,
	svc *entitlement.Service,
	registry *carrier.Registry,
	gateway handlers.CarrierHealthChecker,
	verifier auth.Verifier,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
		db:     database,
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.Metrics())
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment))

	// Unauthenticated surface
	r.Engine.GET("/health", r.health)
	r.Engine.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Version,
			"commit":     cfg.Commit,
			"build_date": cfg.BuildDate,
		})
	})
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated API
	v1 := r.Engine.Group("/api/v1")
	v1.Use(middleware.RequireAuth(verifier, logger))
	// After auth so the budget is keyed to the verified caller.
	v1.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitPeriod))

	handlers.NewProfilesHandler(svc, logger).RegisterRoutes(v1)
	handlers.NewDevicesHandler(svc, database, logger).RegisterRoutes(v1)
	handlers.NewCarriersHandler(registry, gateway, logger).RegisterRoutes(v1)
	handlers.NewAuditLogsHandler(database, logger).RegisterRoutes(v1)

	return r
}

// health reports liveness and database reachability.
func (r *Router) health(c *gin.Context) {
	if r.db != nil {
		if err := r.db.Ping(c.Request.Context()); err != nil {
			r.logger.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

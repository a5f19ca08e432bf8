package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/models"
)

// CarrierHealthChecker probes a carrier's API availability.
type CarrierHealthChecker interface {
	HealthCheck(ctx context.Context, cfg models.CarrierConfig) bool
}

// CarriersHandler handles carrier HTTP endpoints.
type CarriersHandler struct {
	registry *carrier.Registry
	gateway  CarrierHealthChecker
	logger   zerolog.Logger
}

// NewCarriersHandler creates a new CarriersHandler.
func NewCarriersHandler(registry *carrier.Registry, gateway CarrierHealthChecker, logger zerolog.Logger) *CarriersHandler {
	return &CarriersHandler{
		registry: registry,
		gateway:  gateway,
		logger:   logger.With().Str("component", "carriers_handler").Logger(),
	}
}

// RegisterRoutes registers carrier routes on the given router group.
func (h *CarriersHandler) RegisterRoutes(r *gin.RouterGroup) {
	carriers := r.Group("/carriers")
	{
		carriers.GET("", h.List)
		carriers.GET("/:code", h.Get)
		carriers.GET("/:code/health", h.Health)
	}
}

// List returns all registered carriers.
// GET /api/v1/carriers
func (h *CarriersHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"carriers": h.registry.List()})
}

// Get returns one carrier's configuration.
// GET /api/v1/carriers/:code
func (h *CarriersHandler) Get(c *gin.Context) {
	cfg, err := h.registry.Lookup(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "carrier not found"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Health probes a carrier's API.
// GET /api/v1/carriers/:code/health
func (h *CarriersHandler) Health(c *gin.Context) {
	cfg, err := h.registry.Lookup(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "carrier not found"})
		return
	}

	healthy := h.gateway.HealthCheck(c.Request.Context(), cfg)
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"carrier": cfg.CarrierCode, "healthy": healthy})
}

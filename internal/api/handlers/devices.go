package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/api/middleware"
	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/entitlement"
	"github.com/nexorasim/entitlement/internal/models"
)

// DeviceService defines the orchestrator operations the device endpoints need.
type DeviceService interface {
	RegisterDevice(ctx context.Context, req entitlement.RegisterDeviceRequest) (*models.Device, error)
}

// DeviceStore defines the read-side persistence the device endpoints need.
type DeviceStore interface {
	GetDeviceByID(ctx context.Context, deviceID string) (*models.Device, error)
	GetDevicesByUserID(ctx context.Context, userID string) ([]*models.Device, error)
	GetProfilesByDeviceID(ctx context.Context, deviceID string) ([]*models.ESIMProfile, error)
}

// DevicesHandler handles device HTTP endpoints.
type DevicesHandler struct {
	svc    DeviceService
	store  DeviceStore
	logger zerolog.Logger
}

// NewDevicesHandler creates a new DevicesHandler.
func NewDevicesHandler(svc DeviceService, store DeviceStore, logger zerolog.Logger) *DevicesHandler {
	return &DevicesHandler{
		svc:    svc,
		store:  store,
		logger: logger.With().Str("component", "devices_handler").Logger(),
	}
}

// RegisterRoutes registers device routes on the given router group.
func (h *DevicesHandler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.POST("", h.Register)
		devices.GET("", h.ListByUser)
		devices.GET("/:id", h.Get)
		devices.GET("/:id/profiles", h.Profiles)
	}
}

// Register registers a device and derives its eSIM capability.
// POST /api/v1/devices
func (h *DevicesHandler) Register(c *gin.Context) {
	var req entitlement.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.CallerID(c)
	}

	device, err := h.svc.RegisterDevice(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// ListByUser returns the caller's devices.
// GET /api/v1/devices?user_id=U1
func (h *DevicesHandler) ListByUser(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = middleware.CallerID(c)
	}

	devices, err := h.store.GetDevicesByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list devices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list devices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// Get returns a device by ID.
// GET /api/v1/devices/:id
func (h *DevicesHandler) Get(c *gin.Context) {
	device, err := h.store.GetDeviceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		h.logger.Error().Err(err).Str("device_id", c.Param("id")).Msg("failed to get device")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get device"})
		return
	}
	c.JSON(http.StatusOK, device)
}

// Profiles returns the profiles bound to a device.
// GET /api/v1/devices/:id/profiles
func (h *DevicesHandler) Profiles(c *gin.Context) {
	if _, err := h.store.GetDeviceByID(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		h.logger.Error().Err(err).Str("device_id", c.Param("id")).Msg("failed to get device")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get device"})
		return
	}

	profiles, err := h.store.GetProfilesByDeviceID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", c.Param("id")).Msg("failed to list profiles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

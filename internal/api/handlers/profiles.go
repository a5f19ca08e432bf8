package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/api/middleware"
	"github.com/nexorasim/entitlement/internal/entitlement"
	"github.com/nexorasim/entitlement/internal/models"
)

// ProfileService defines the orchestrator operations the profile endpoints need.
type ProfileService interface {
	TransferProfile(ctx context.Context, req entitlement.TransferProfileRequest) (*models.TransferOperation, error)
	ActivateProfile(ctx context.Context, req entitlement.ActivateProfileRequest) (*models.ESIMProfile, error)
	DownloadProfile(ctx context.Context, req entitlement.DownloadProfileRequest) (*models.ESIMProfile, error)
	SuspendProfile(ctx context.Context, iccid, userID string) (*models.ESIMProfile, error)
	ReactivateProfile(ctx context.Context, iccid, userID string) (*models.ESIMProfile, error)
	RevokeProfile(ctx context.Context, iccid, reason, userID string) error
	GetProfileStatus(ctx context.Context, iccid string) (*models.ESIMProfile, error)
	GetTransferOperation(ctx context.Context, id uuid.UUID) (*models.TransferOperation, error)
}

// ProfilesHandler handles profile lifecycle HTTP endpoints.
type ProfilesHandler struct {
	svc    ProfileService
	logger zerolog.Logger
}

// NewProfilesHandler creates a new ProfilesHandler.
func NewProfilesHandler(svc ProfileService, logger zerolog.Logger) *ProfilesHandler {
	return &ProfilesHandler{
		svc:    svc,
		logger: logger.With().Str("component", "profiles_handler").Logger(),
	}
}

// RegisterRoutes registers profile routes on the given router group.
func (h *ProfilesHandler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	{
		profiles.POST("/transfer", h.Transfer)
		profiles.POST("/download", h.Download)
		profiles.GET("/:iccid/status", h.Status)
		profiles.POST("/:iccid/activate", h.Activate)
		profiles.POST("/:iccid/suspend", h.Suspend)
		profiles.POST("/:iccid/reactivate", h.Reactivate)
		profiles.POST("/:iccid/revoke", h.Revoke)
	}
	transfers := r.Group("/transfers")
	{
		transfers.GET("/:id", h.GetTransfer)
	}
}

// iccidParam validates the ICCID path parameter before it reaches the service.
func iccidParam(c *gin.Context) (string, bool) {
	iccid := c.Param("iccid")
	if !models.ValidICCID(iccid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "iccid must be a 19-20 digit number"})
		return "", false
	}
	return iccid, true
}

// Transfer moves a profile between devices. Failures after the operation
// record exists are absorbed into it, so a 200 can carry a failed operation;
// callers inspect status.
// POST /api/v1/profiles/transfer
func (h *ProfilesHandler) Transfer(c *gin.Context) {
	var req entitlement.TransferProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.CallerID(c)
	}

	op, err := h.svc.TransferProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, op)
}

// activateRequest is the body for profile activation; the ICCID comes from
// the path and the carrier from the stored profile.
type activateRequest struct {
	DeviceID   string            `json:"device_id" binding:"required"`
	UserID     string            `json:"user_id"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Activate provisions and enables a stored profile via its carrier.
// POST /api/v1/profiles/:iccid/activate
func (h *ProfilesHandler) Activate(c *gin.Context) {
	iccid, ok := iccidParam(c)
	if !ok {
		return
	}

	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.CallerID(c)
	}

	profile, err := h.svc.ActivateProfile(c.Request.Context(), entitlement.ActivateProfileRequest{
		ICCID:      iccid,
		DeviceID:   req.DeviceID,
		UserID:     req.UserID,
		Parameters: req.Parameters,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Download requests profile delivery from the carrier's SM-DP+.
// POST /api/v1/profiles/download
func (h *ProfilesHandler) Download(c *gin.Context) {
	var req entitlement.DownloadProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.CallerID(c)
	}

	profile, err := h.svc.DownloadProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Status returns the stored profile for an ICCID.
// GET /api/v1/profiles/:iccid/status
func (h *ProfilesHandler) Status(c *gin.Context) {
	iccid, ok := iccidParam(c)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfileStatus(c.Request.Context(), iccid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Suspend disables an enabled profile.
// POST /api/v1/profiles/:iccid/suspend
func (h *ProfilesHandler) Suspend(c *gin.Context) {
	iccid, ok := iccidParam(c)
	if !ok {
		return
	}

	profile, err := h.svc.SuspendProfile(c.Request.Context(), iccid, middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Reactivate re-enables a disabled profile.
// POST /api/v1/profiles/:iccid/reactivate
func (h *ProfilesHandler) Reactivate(c *gin.Context) {
	iccid, ok := iccidParam(c)
	if !ok {
		return
	}

	profile, err := h.svc.ReactivateProfile(c.Request.Context(), iccid, middleware.CallerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// revokeRequest is the body for profile revocation.
type revokeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Revoke revokes a profile at the carrier and marks it deleted.
// POST /api/v1/profiles/:iccid/revoke
func (h *ProfilesHandler) Revoke(c *gin.Context) {
	iccid, ok := iccidParam(c)
	if !ok {
		return
	}

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}

	if err := h.svc.RevokeProfile(c.Request.Context(), iccid, req.Reason, middleware.CallerID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTransfer returns a transfer operation by ID.
// GET /api/v1/transfers/:id
func (h *ProfilesHandler) GetTransfer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operation ID"})
		return
	}

	op, err := h.svc.GetTransferOperation(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

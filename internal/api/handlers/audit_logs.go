package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/export"
	"github.com/nexorasim/entitlement/internal/models"
)

// AuditLogStore defines the interface for audit log persistence operations.
type AuditLogStore interface {
	GetAuditLogs(ctx context.Context, filter db.AuditLogFilter) ([]*models.AuditLog, error)
	CountAuditLogs(ctx context.Context, filter db.AuditLogFilter) (int64, error)
}

// AuditLogsHandler handles audit log HTTP endpoints.
type AuditLogsHandler struct {
	store  AuditLogStore
	logger zerolog.Logger
}

// NewAuditLogsHandler creates a new AuditLogsHandler.
func NewAuditLogsHandler(store AuditLogStore, logger zerolog.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{
		store:  store,
		logger: logger.With().Str("component", "audit_logs_handler").Logger(),
	}
}

// RegisterRoutes registers audit log routes on the given router group.
func (h *AuditLogsHandler) RegisterRoutes(r *gin.RouterGroup) {
	auditLogs := r.Group("/audit-logs")
	{
		auditLogs.GET("", h.List)
		auditLogs.GET("/export/csv", h.ExportCSV)
	}
}

// AuditLogListResponse is the response for listing audit logs.
type AuditLogListResponse struct {
	AuditLogs  []*models.AuditLog `json:"audit_logs"`
	TotalCount int64              `json:"total_count"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// List returns audit logs matching the query filters, newest first.
// GET /api/v1/audit-logs
// Query params: action, status, resource_id, user_id, start_date, end_date, limit, offset
func (h *AuditLogsHandler) List(c *gin.Context) {
	filter := h.parseFilterParams(c)

	logs, err := h.store.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}

	totalCount, err := h.store.CountAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count audit logs"})
		return
	}

	c.JSON(http.StatusOK, AuditLogListResponse{
		AuditLogs:  logs,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ExportCSV exports audit logs as CSV.
// GET /api/v1/audit-logs/export/csv
func (h *AuditLogsHandler) ExportCSV(c *gin.Context) {
	// No pagination for export.
	filter := h.parseFilterParams(c)
	filter.Limit = 0
	filter.Offset = 0

	logs, err := h.store.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export audit logs"})
		return
	}

	filename := "audit_logs_" + time.Now().UTC().Format("2006-01-02_15-04-05") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := export.WriteCSV(c.Writer, logs); err != nil {
		h.logger.Error().Err(err).Msg("failed to write CSV export")
		return
	}

	h.logger.Info().Int("count", len(logs)).Msg("audit logs exported to CSV")
}

// parseFilterParams extracts filter parameters from the query string.
func (h *AuditLogsHandler) parseFilterParams(c *gin.Context) db.AuditLogFilter {
	filter := db.AuditLogFilter{
		Action:     c.Query("action"),
		Status:     c.Query("status"),
		ResourceID: c.Query("resource_id"),
		UserID:     c.Query("user_id"),
	}

	if startDate := c.Query("start_date"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			filter.StartDate = &t
		} else if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartDate = &t
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			filter.EndDate = &t
		} else if t, err := time.Parse("2006-01-02", endDate); err == nil {
			// Set to end of day
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if filter.Limit == 0 {
		filter.Limit = 50 // Default limit
	}

	if offset := c.Query("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	return filter
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/models"
)

type mockAuditLogStore struct {
	logs       []*models.AuditLog
	lastFilter db.AuditLogFilter
}

func (m *mockAuditLogStore) GetAuditLogs(_ context.Context, filter db.AuditLogFilter) ([]*models.AuditLog, error) {
	m.lastFilter = filter
	return m.logs, nil
}

func (m *mockAuditLogStore) CountAuditLogs(_ context.Context, _ db.AuditLogFilter) (int64, error) {
	return int64(len(m.logs)), nil
}

func setupAuditRouter(store *mockAuditLogStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	NewAuditLogsHandler(store, zerolog.Nop()).RegisterRoutes(v1)
	return r
}

func TestAuditLogsList(t *testing.T) {
	store := &mockAuditLogStore{logs: []*models.AuditLog{
		models.NewAuditLog(models.AuditActionProfileTransfer, models.AuditStatusCompleted, testICCID, "U1"),
		models.NewAuditLog(models.AuditActionProfileTransfer, models.AuditStatusInitiated, testICCID, "U1"),
	}}
	r := setupAuditRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?action=ProfileTransfer&limit=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp AuditLogListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 2 || len(resp.AuditLogs) != 2 {
		t.Errorf("unexpected counts: total=%d, logs=%d", resp.TotalCount, len(resp.AuditLogs))
	}
	if store.lastFilter.Action != "ProfileTransfer" {
		t.Errorf("unexpected action filter %q", store.lastFilter.Action)
	}
	if store.lastFilter.Limit != 10 {
		t.Errorf("unexpected limit %d", store.lastFilter.Limit)
	}
}

func TestAuditLogsListDefaultLimit(t *testing.T) {
	store := &mockAuditLogStore{}
	r := setupAuditRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.lastFilter.Limit != 50 {
		t.Errorf("expected default limit 50, got %d", store.lastFilter.Limit)
	}
}

func TestAuditLogsListDateFilters(t *testing.T) {
	store := &mockAuditLogStore{}
	r := setupAuditRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?start_date=2026-08-01&end_date=2026-08-30", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.lastFilter.StartDate == nil || store.lastFilter.EndDate == nil {
		t.Fatal("expected date filters to be parsed")
	}
	if !store.lastFilter.EndDate.After(*store.lastFilter.StartDate) {
		t.Error("end date must be after start date")
	}
}

func TestAuditLogsExportCSV(t *testing.T) {
	store := &mockAuditLogStore{logs: []*models.AuditLog{
		models.NewAuditLog(models.AuditActionDeviceRegistration, models.AuditStatusCompleted, "D1", "U1"),
	}}
	r := setupAuditRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "DeviceRegistration") {
		t.Errorf("unexpected row: %s", lines[1])
	}

	// Export ignores pagination.
	if store.lastFilter.Limit != 0 {
		t.Errorf("expected no limit on export, got %d", store.lastFilter.Limit)
	}
}

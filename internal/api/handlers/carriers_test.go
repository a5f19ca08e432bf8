package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/models"
)

type stubHealthChecker struct {
	healthy map[string]bool
}

func (s *stubHealthChecker) HealthCheck(_ context.Context, cfg models.CarrierConfig) bool {
	return s.healthy[cfg.CarrierCode]
}

func setupCarriersRouter(checker CarrierHealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	NewCarriersHandler(carrier.NewRegistry(), checker, zerolog.Nop()).RegisterRoutes(v1)
	return r
}

func TestCarriersList(t *testing.T) {
	r := setupCarriersRouter(&stubHealthChecker{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Carriers []models.CarrierConfig `json:"carriers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Carriers) != 4 {
		t.Fatalf("expected 4 carriers, got %d", len(resp.Carriers))
	}

	// Certificate paths must never appear in API responses.
	for _, c := range resp.Carriers {
		if c.CertificatePath != "" {
			t.Errorf("carrier %s leaked its certificate path", c.CarrierCode)
		}
	}
}

func TestCarriersGet(t *testing.T) {
	r := setupCarriersRouter(&stubHealthChecker{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carriers/MPT", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cfg models.CarrierConfig
	json.Unmarshal(w.Body.Bytes(), &cfg)
	if cfg.MCC != "414" || cfg.MNC != "01" {
		t.Errorf("unexpected MCC/MNC %s/%s", cfg.MCC, cfg.MNC)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carriers/TELENOR", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown carrier, got %d", w.Code)
	}
}

func TestCarriersHealth(t *testing.T) {
	r := setupCarriersRouter(&stubHealthChecker{healthy: map[string]bool{"MPT": true}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carriers/MPT/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthy carrier, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/carriers/ATOM/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for unhealthy carrier, got %d", w.Code)
	}
}

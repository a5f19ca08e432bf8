package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexorasim/entitlement/internal/models"
	"github.com/rs/zerolog"
)

func testConfig(endpoint string) models.CarrierConfig {
	return models.CarrierConfig{
		CarrierCode:          "MPT",
		CarrierName:          "Myanmar Posts and Telecommunications",
		SMDPAddress:          "smdp.mpt.com.mm",
		AuthenticationMethod: models.AuthMethodCertificate,
		CertificatePath:      "certificates/mpt-client.p12",
		APIEndpoint:          endpoint,
		TimeoutSeconds:       5,
		RetryAttempts:        3,
		ComplianceLevel:      "GSMA-SGP22",
	}
}

func TestGatewayTransfer(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ua := r.Header.Get("User-Agent"); ua != "NexoraSIM-Enterprise/1.0" {
			t.Errorf("unexpected user agent %q", ua)
		}
		if cl := r.Header.Get("X-Compliance-Level"); cl != "GSMA-SGP22" {
			t.Errorf("unexpected compliance level %q", cl)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"operationId": "X", "status": "completed"})
	}))
	defer srv.Close()

	g := NewGateway(zerolog.Nop())
	result, err := g.Transfer(context.Background(), testConfig(srv.URL), TransferRequest{
		ICCID:          "89014103211118510720",
		SourceDeviceID: "D1",
		TargetDeviceID: "D2",
		OperationID:    "op-1",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if gotPath != "/profiles/transfer" {
		t.Errorf("expected POST /profiles/transfer, got %s", gotPath)
	}
	if gotPayload["iccid"] != "89014103211118510720" || gotPayload["sourceDeviceId"] != "D1" ||
		gotPayload["targetDeviceId"] != "D2" || gotPayload["operationId"] != "op-1" {
		t.Errorf("unexpected payload %v", gotPayload)
	}
	if result.Status != models.TransferStatusCompleted {
		t.Errorf("expected completed, got %s", result.Status)
	}
	if result.OperationID != "X" {
		t.Errorf("expected operation ID X, got %s", result.OperationID)
	}
}

func TestGatewayTransferStatusMapping(t *testing.T) {
	tests := []struct {
		remote string
		want   models.TransferStatus
	}{
		{"initiated", models.TransferStatusInitiated},
		{"in_progress", models.TransferStatusInProgress},
		{"completed", models.TransferStatusCompleted},
		{"failed", models.TransferStatusFailed},
		{"cancelled", models.TransferStatusCancelled},
		{"weird", models.TransferStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"operationId": "X", "status": tt.remote})
			}))
			defer srv.Close()

			g := NewGateway(zerolog.Nop())
			result, err := g.Transfer(context.Background(), testConfig(srv.URL), TransferRequest{ICCID: "89014103211118510720"})
			if err != nil {
				t.Fatalf("Transfer failed: %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("remote %q: expected %s, got %s", tt.remote, tt.want, result.Status)
			}
		})
	}
}

func TestGatewayTransferRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGateway(zerolog.Nop())
	_, err := g.Transfer(context.Background(), testConfig(srv.URL), TransferRequest{ICCID: "89014103211118510720"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected CallError, got %T", err)
	}
	if callErr.CarrierCode != "MPT" {
		t.Errorf("expected carrier code MPT, got %s", callErr.CarrierCode)
	}
	if callErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", callErr.StatusCode)
	}
	if !callErr.Retryable() {
		t.Error("expected 5xx to be retryable")
	}
}

func TestGatewayCallErrorRetryable(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{0, true},   // transport failure
		{500, true},
		{502, true},
		{400, false},
		{404, false},
		{422, false},
	}

	for _, tt := range tests {
		e := &CallError{CarrierCode: "MPT", StatusCode: tt.status, Err: errors.New("x")}
		if e.Retryable() != tt.retryable {
			t.Errorf("status %d: expected retryable=%v", tt.status, tt.retryable)
		}
	}
}

func TestGatewayActivate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles/activate" {
			t.Errorf("expected /profiles/activate, got %s", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["iccid"] != "89014103211118510720" || payload["deviceId"] != "D1" {
			t.Errorf("unexpected payload %v", payload)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"imsi":           "414012345678901",
			"activationCode": "LPA:1$smdp.mpt.com.mm$CODE",
			"status":         "enabled",
		})
	}))
	defer srv.Close()

	g := NewGateway(zerolog.Nop())
	profile, err := g.Activate(context.Background(), testConfig(srv.URL), "89014103211118510720", ActivationRequest{
		DeviceID:   "D1",
		Parameters: map[string]string{"plan": "enterprise"},
	})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if profile.Status != models.ProfileStatusEnabled {
		t.Errorf("expected enabled, got %s", profile.Status)
	}
	if profile.IMSI != "414012345678901" {
		t.Errorf("unexpected IMSI %s", profile.IMSI)
	}
	if profile.ActivationCode != "LPA:1$smdp.mpt.com.mm$CODE" {
		t.Errorf("unexpected activation code %s", profile.ActivationCode)
	}
	if profile.SMDPAddress != "smdp.mpt.com.mm" {
		t.Errorf("expected SM-DP+ from config, got %s", profile.SMDPAddress)
	}
	if profile.ActivatedAt == nil {
		t.Error("expected ActivatedAt to be set")
	}
}

func TestGatewayDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles/download" {
			t.Errorf("expected /profiles/download, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"activationCode": "LPA:1$x$y", "status": "downloaded"})
	}))
	defer srv.Close()

	g := NewGateway(zerolog.Nop())
	profile, err := g.Download(context.Background(), testConfig(srv.URL), "89014103211118510720", "U1")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if profile.Status != models.ProfileStatusDownloaded {
		t.Errorf("expected downloaded, got %s", profile.Status)
	}
	if profile.ActivationCode != "LPA:1$x$y" {
		t.Errorf("unexpected activation code %s", profile.ActivationCode)
	}
}

func TestGatewayHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected /health, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		g := NewGateway(zerolog.Nop())
		if !g.HealthCheck(context.Background(), testConfig(srv.URL)) {
			t.Error("expected healthy")
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		g := NewGateway(zerolog.Nop())
		if g.HealthCheck(context.Background(), testConfig(srv.URL)) {
			t.Error("expected unhealthy on 503")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		g := NewGateway(zerolog.Nop())
		cfg := testConfig("http://127.0.0.1:1")
		cfg.TimeoutSeconds = 1
		if g.HealthCheck(context.Background(), cfg) {
			t.Error("expected unhealthy when unreachable")
		}
	})
}

package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nexorasim/entitlement/internal/models"
	"github.com/rs/zerolog"
)

const userAgent = "NexoraSIM-Enterprise/1.0"

// CallError is returned when a carrier call fails at the transport level or
// with a non-2xx response. StatusCode is zero for transport failures.
type CallError struct {
	CarrierCode string
	StatusCode  int
	Err         error
}

func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("carrier %s call failed with status %d: %v", e.CarrierCode, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("carrier %s call failed: %v", e.CarrierCode, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying. Transport errors
// and 5xx responses are transient; 4xx responses are not.
func (e *CallError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// TransferRequest is the payload sent to a carrier's transfer endpoint. The
// operation ID makes carrier-side processing idempotent under retries.
type TransferRequest struct {
	ICCID          string `json:"iccid"`
	SourceDeviceID string `json:"sourceDeviceId"`
	TargetDeviceID string `json:"targetDeviceId"`
	OperationID    string `json:"operationId"`
}

// TransferResult is the carrier's response to a transfer request, with the
// remote status already mapped onto the internal enum.
type TransferResult struct {
	OperationID string
	Status      models.TransferStatus
	Message     string
}

// ActivationRequest is the payload sent to a carrier's activate endpoint.
type ActivationRequest struct {
	DeviceID   string            `json:"deviceId"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Gateway executes carrier-specific HTTP operations. It performs no retries;
// retry policy belongs to the orchestrator, driven by each carrier's
// configured retry budget.
type Gateway struct {
	logger zerolog.Logger
}

// NewGateway creates a carrier gateway.
func NewGateway(logger zerolog.Logger) *Gateway {
	return &Gateway{
		logger: logger.With().Str("component", "carrier_gateway").Logger(),
	}
}

// newClient builds an HTTP client scoped to the carrier's configured timeout.
func (g *Gateway) newClient(cfg models.CarrierConfig) *http.Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// Transfer submits a profile transfer to the carrier and maps the remote
// status onto the internal enum. An unrecognized remote status maps to
// failed; a transfer never silently succeeds.
func (g *Gateway) Transfer(ctx context.Context, cfg models.CarrierConfig, req TransferRequest) (TransferResult, error) {
	var resp struct {
		OperationID string `json:"operationId"`
		Status      string `json:"status"`
		Message     string `json:"message"`
	}

	if err := g.postJSON(ctx, cfg, cfg.APIEndpoint+"/profiles/transfer", req, &resp); err != nil {
		return TransferResult{}, err
	}

	result := TransferResult{
		OperationID: resp.OperationID,
		Status:      models.MapCarrierTransferStatus(resp.Status),
		Message:     resp.Message,
	}

	g.logger.Info().
		Str("carrier", cfg.CarrierCode).
		Str("iccid", req.ICCID).
		Str("remote_status", resp.Status).
		Str("status", string(result.Status)).
		Msg("carrier transfer call completed")

	return result, nil
}

// Activate submits a profile activation and returns the fully populated
// profile in the enabled state.
func (g *Gateway) Activate(ctx context.Context, cfg models.CarrierConfig, iccid string, req ActivationRequest) (*models.ESIMProfile, error) {
	payload := struct {
		ICCID      string            `json:"iccid"`
		DeviceID   string            `json:"deviceId"`
		Parameters map[string]string `json:"parameters,omitempty"`
	}{
		ICCID:      iccid,
		DeviceID:   req.DeviceID,
		Parameters: req.Parameters,
	}

	var resp struct {
		IMSI           string `json:"imsi"`
		ActivationCode string `json:"activationCode"`
		Status         string `json:"status"`
	}

	if err := g.postJSON(ctx, cfg, cfg.APIEndpoint+"/profiles/activate", payload, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile := &models.ESIMProfile{
		ICCID:          iccid,
		IMSI:           resp.IMSI,
		CarrierCode:    cfg.CarrierCode,
		DeviceID:       req.DeviceID,
		Status:         models.ProfileStatusEnabled,
		CreatedAt:      now,
		ActivatedAt:    &now,
		ActivationCode: resp.ActivationCode,
		SMDPAddress:    cfg.SMDPAddress,
		Version:        1,
	}

	g.logger.Info().
		Str("carrier", cfg.CarrierCode).
		Str("iccid", iccid).
		Msg("carrier activation call completed")

	return profile, nil
}

// Download requests profile delivery from the carrier's SM-DP+ and returns
// the profile in the downloaded state with its activation code.
func (g *Gateway) Download(ctx context.Context, cfg models.CarrierConfig, iccid, userID string) (*models.ESIMProfile, error) {
	payload := struct {
		ICCID  string `json:"iccid"`
		UserID string `json:"userId"`
		SMDP   string `json:"smdp"`
	}{
		ICCID:  iccid,
		UserID: userID,
		SMDP:   cfg.SMDPAddress,
	}

	var resp struct {
		ActivationCode string `json:"activationCode"`
		Status         string `json:"status"`
	}

	if err := g.postJSON(ctx, cfg, cfg.APIEndpoint+"/profiles/download", payload, &resp); err != nil {
		return nil, err
	}

	profile := models.NewESIMProfile(iccid, cfg.CarrierCode, "")
	profile.Status = models.ProfileStatusDownloaded
	profile.ActivationCode = resp.ActivationCode
	profile.SMDPAddress = cfg.SMDPAddress

	g.logger.Info().
		Str("carrier", cfg.CarrierCode).
		Str("iccid", iccid).
		Msg("carrier download call completed")

	return profile, nil
}

// Revoke asks the carrier to revoke a profile.
func (g *Gateway) Revoke(ctx context.Context, cfg models.CarrierConfig, iccid, reason string) error {
	payload := struct {
		ICCID  string `json:"iccid"`
		Reason string `json:"reason"`
		SMDP   string `json:"smdp"`
	}{
		ICCID:  iccid,
		Reason: reason,
		SMDP:   cfg.SMDPAddress,
	}

	return g.postJSON(ctx, cfg, cfg.APIEndpoint+"/profiles/revoke", payload, nil)
}

// HealthCheck probes the carrier's health endpoint. It returns false rather
// than an error on any failure.
func (g *Gateway) HealthCheck(ctx context.Context, cfg models.CarrierConfig) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.APIEndpoint+"/health", nil)
	if err != nil {
		return false
	}
	g.setHeaders(req, cfg)

	resp, err := g.newClient(cfg).Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("carrier", cfg.CarrierCode).Msg("carrier health check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// postJSON performs an authenticated POST and decodes the JSON response into
// out when out is non-nil.
func (g *Gateway) postJSON(ctx context.Context, cfg models.CarrierConfig, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &CallError{CarrierCode: cfg.CarrierCode, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &CallError{CarrierCode: cfg.CarrierCode, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	g.setHeaders(req, cfg)

	resp, err := g.newClient(cfg).Do(req)
	if err != nil {
		return &CallError{CarrierCode: cfg.CarrierCode, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &CallError{
			CarrierCode: cfg.CarrierCode,
			StatusCode:  resp.StatusCode,
			Err:         fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &CallError{CarrierCode: cfg.CarrierCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return nil
}

// setHeaders attaches the carrier credential and compliance headers. With
// certificate auth the certificate reference is presented so the carrier's
// edge can select the right trust anchor; the TLS handshake itself carries
// the client certificate.
func (g *Gateway) setHeaders(req *http.Request, cfg models.CarrierConfig) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Compliance-Level", cfg.ComplianceLevel)
	if cfg.AuthenticationMethod == models.AuthMethodCertificate && cfg.CertificatePath != "" {
		req.Header.Set("X-Client-Certificate", cfg.CertificatePath)
	}
}

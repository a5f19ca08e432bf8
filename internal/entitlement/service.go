// Package entitlement implements the profile lifecycle orchestrator: it
// validates requests, serializes work per ICCID, drives carrier calls with
// the carrier's retry budget and records the audit trail.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/audit"
	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/metrics"
	"github.com/nexorasim/entitlement/internal/models"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	UpsertProfile(ctx context.Context, p *models.ESIMProfile) error
	UpdateProfileStatus(ctx context.Context, iccid string, status models.ProfileStatus, expectedVersion int64) error
	GetProfileByICCID(ctx context.Context, iccid string) (*models.ESIMProfile, error)
	CreateDevice(ctx context.Context, d *models.Device) error
	GetDeviceByID(ctx context.Context, deviceID string) (*models.Device, error)
	CreateTransferOperation(ctx context.Context, op *models.TransferOperation) error
	UpdateTransferOperation(ctx context.Context, op *models.TransferOperation) error
	GetTransferOperationByID(ctx context.Context, id uuid.UUID) (*models.TransferOperation, error)
}

// CarrierGateway is the outbound carrier surface the orchestrator needs.
type CarrierGateway interface {
	Transfer(ctx context.Context, cfg models.CarrierConfig, req carrier.TransferRequest) (carrier.TransferResult, error)
	Activate(ctx context.Context, cfg models.CarrierConfig, iccid string, req carrier.ActivationRequest) (*models.ESIMProfile, error)
	Download(ctx context.Context, cfg models.CarrierConfig, iccid, userID string) (*models.ESIMProfile, error)
	Revoke(ctx context.Context, cfg models.CarrierConfig, iccid, reason string) error
}

// Service orchestrates the eSIM profile lifecycle.
type Service struct {
	store    Store
	registry *carrier.Registry
	gateway  CarrierGateway
	audit    audit.Recorder
	lease    Lease
	logger   zerolog.Logger
}

// NewService creates the orchestrator.
func NewService(store Store, registry *carrier.Registry, gateway CarrierGateway, recorder audit.Recorder, lease Lease, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		gateway:  gateway,
		audit:    recorder,
		lease:    lease,
		logger:   logger.With().Str("component", "entitlement").Logger(),
	}
}

// TransferProfileRequest asks to move a profile between two devices owned by
// the same user.
type TransferProfileRequest struct {
	ICCID          string `json:"iccid" binding:"required"`
	SourceDeviceID string `json:"source_device_id" binding:"required"`
	TargetDeviceID string `json:"target_device_id" binding:"required"`
	UserID         string `json:"user_id"`
}

// TransferProfile moves a profile from the source device to the target
// device. The operation record is created and audited before anything else;
// once it exists, every failure, precondition or carrier, is absorbed into
// the record rather than returned, so callers always receive the operation
// with its outcome. Errors are only returned for request validation and
// persistence failures that precede the record.
func (s *Service) TransferProfile(ctx context.Context, req TransferProfileRequest) (*models.TransferOperation, error) {
	if err := s.validateTransferRequest(req); err != nil {
		return nil, err
	}

	op := models.NewTransferOperation(req.SourceDeviceID, req.TargetDeviceID, req.ICCID, req.UserID)
	if err := s.store.CreateTransferOperation(ctx, op); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileTransfer, models.AuditStatusInitiated, req.ICCID, req.UserID).
		WithDetails(fmt.Sprintf("operation %s: %s -> %s", op.OperationID, req.SourceDeviceID, req.TargetDeviceID)))

	// The lease is taken before the profile read so no one else can move the
	// profile between the precondition checks and the rebind.
	release, err := s.lease.Acquire(ctx, req.ICCID)
	if err != nil {
		s.finishTransfer(ctx, op, "unknown", func() { op.Fail(err.Error()) })
		return op, nil
	}
	defer release()

	profile, err := s.store.GetProfileByICCID(ctx, req.ICCID)
	if err != nil {
		msg := "load profile: " + err.Error()
		if errors.Is(err, db.ErrNotFound) {
			msg = fmt.Sprintf("profile %s not found", req.ICCID)
		}
		s.finishTransfer(ctx, op, "unknown", func() { op.Fail(msg) })
		return op, nil
	}
	carrierCode := profile.CarrierCode

	if profile.Status != models.ProfileStatusEnabled {
		s.finishTransfer(ctx, op, carrierCode, func() {
			op.Fail(fmt.Sprintf("profile %s is %s, transfer requires enabled", req.ICCID, profile.Status))
		})
		return op, nil
	}
	if profile.DeviceID != req.SourceDeviceID {
		s.finishTransfer(ctx, op, carrierCode, func() {
			op.Fail(fmt.Sprintf("profile %s is not on device %s", req.ICCID, req.SourceDeviceID))
		})
		return op, nil
	}

	if _, err := s.store.GetDeviceByID(ctx, req.TargetDeviceID); err != nil {
		msg := "load target device: " + err.Error()
		if errors.Is(err, db.ErrNotFound) {
			msg = fmt.Sprintf("target device %s is not registered", req.TargetDeviceID)
		}
		s.finishTransfer(ctx, op, carrierCode, func() { op.Fail(msg) })
		return op, nil
	}

	cfg, err := s.registry.Lookup(carrierCode)
	if err != nil {
		s.finishTransfer(ctx, op, carrierCode, func() { op.Fail(err.Error()) })
		return op, nil
	}

	op.Status = models.TransferStatusInProgress
	if err := s.store.UpdateTransferOperation(ctx, op); err != nil {
		s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Fail(err.Error()) })
		return op, nil
	}

	result, err := s.callTransfer(ctx, cfg, carrier.TransferRequest{
		ICCID:          req.ICCID,
		SourceDeviceID: req.SourceDeviceID,
		TargetDeviceID: req.TargetDeviceID,
		OperationID:    op.OperationID.String(),
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Cancel("cancelled: " + err.Error()) })
		} else {
			s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Fail(err.Error()) })
		}
		return op, nil
	}

	switch result.Status {
	case models.TransferStatusCompleted:
		profile.DeviceID = req.TargetDeviceID
		if err := s.store.UpsertProfile(ctx, profile); err != nil {
			s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Fail("carrier confirmed but rebind failed: " + err.Error()) })
			return op, nil
		}
		s.finishTransfer(ctx, op, cfg.CarrierCode, op.Complete)
	case models.TransferStatusCancelled:
		s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Cancel(result.Message) })
	case models.TransferStatusFailed:
		s.finishTransfer(ctx, op, cfg.CarrierCode, func() { op.Fail(result.Message) })
	default:
		// Carrier is still processing; the reconciliation sweep closes the
		// operation if the carrier never settles it.
		op.Status = result.Status
		s.finishTransfer(ctx, op, cfg.CarrierCode, nil)
	}

	return op, nil
}

// finishTransfer applies the terminal mutation, persists the operation,
// records metrics and emits the closing audit event.
func (s *Service) finishTransfer(ctx context.Context, op *models.TransferOperation, carrierCode string, mutate func()) {
	if mutate != nil {
		mutate()
	}

	// Persist on a fresh context so a cancelled request still records the outcome.
	pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.UpdateTransferOperation(pctx, op); err != nil {
		s.logger.Error().Err(err).
			Str("operation_id", op.OperationID.String()).
			Msg("failed to persist transfer operation outcome")
	}

	metrics.TransferOperations.WithLabelValues(carrierCode, string(op.Status)).Inc()

	entry := models.NewAuditLog(models.AuditActionProfileTransfer, auditStatusFor(op.Status), op.ProfileID, op.UserID).
		WithDetails(transferDetails(op))
	s.audit.Record(pctx, entry)

	s.logger.Info().
		Str("operation_id", op.OperationID.String()).
		Str("iccid", op.ProfileID).
		Str("status", string(op.Status)).
		Msg("transfer operation settled")
}

func transferDetails(op *models.TransferOperation) string {
	if op.ErrorMessage != "" {
		return fmt.Sprintf("operation %s: %s", op.OperationID, op.ErrorMessage)
	}
	return fmt.Sprintf("operation %s", op.OperationID)
}

// auditStatusFor maps a transfer status to the audit outcome recorded with
// the closing event.
func auditStatusFor(status models.TransferStatus) models.AuditStatus {
	switch status {
	case models.TransferStatusCompleted:
		return models.AuditStatusCompleted
	case models.TransferStatusCancelled:
		return models.AuditStatusCancelled
	case models.TransferStatusFailed:
		return models.AuditStatusFailed
	default:
		return models.AuditStatusInitiated
	}
}

// callTransfer runs the carrier transfer with the carrier's retry budget.
// Only transport errors and 5xx responses are retried.
func (s *Service) callTransfer(ctx context.Context, cfg models.CarrierConfig, req carrier.TransferRequest) (carrier.TransferResult, error) {
	var result carrier.TransferResult
	err := s.withRetry(ctx, cfg, "transfer", func() error {
		var callErr error
		result, callErr = s.gateway.Transfer(ctx, cfg, req)
		return callErr
	})
	return result, err
}

// withRetry runs fn up to the carrier's configured attempt budget with
// exponential backoff, honoring context cancellation between attempts.
func (s *Service) withRetry(ctx context.Context, cfg models.CarrierConfig, operation string, fn func() error) error {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		err := fn()
		metrics.ObserveCarrierCall(cfg.CarrierCode, operation, start, err)
		if err == nil {
			return nil
		}
		lastErr = err

		var callErr *carrier.CallError
		if !errors.As(err, &callErr) || !callErr.Retryable() {
			return err
		}
		if attempt == attempts {
			break
		}

		s.logger.Warn().Err(err).
			Str("carrier", cfg.CarrierCode).
			Str("operation", operation).
			Int("attempt", attempt).
			Msg("carrier call failed, retrying")

		backoff := (500 * time.Millisecond) << (attempt - 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// ActivateProfileRequest asks the carrier to provision and enable a profile
// on a device. The carrier is resolved from the stored profile, never from
// the request.
type ActivateProfileRequest struct {
	ICCID      string
	DeviceID   string
	UserID     string
	Parameters map[string]string
}

// ActivateProfile provisions and enables a stored profile via its carrier.
// Unlike transfers, activation failures are returned to the caller.
func (s *Service) ActivateProfile(ctx context.Context, req ActivateProfileRequest) (*models.ESIMProfile, error) {
	if !models.ValidICCID(req.ICCID) {
		return nil, fmt.Errorf("%q: %w", req.ICCID, ErrInvalidICCID)
	}
	if req.DeviceID == "" || req.UserID == "" {
		return nil, fmt.Errorf("device_id and user_id are required: %w", ErrValidation)
	}

	existing, err := s.store.GetProfileByICCID(ctx, req.ICCID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("iccid %s: %w", req.ICCID, ErrProfileNotFound)
		}
		return nil, err
	}
	if existing.Status == models.ProfileStatusDeleted {
		return nil, fmt.Errorf("profile %s is deleted: %w", req.ICCID, ErrInvalidProfileState)
	}

	cfg, err := s.registry.Lookup(existing.CarrierCode)
	if err != nil {
		return nil, err
	}

	release, err := s.lease.Acquire(ctx, req.ICCID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileActivation, models.AuditStatusInitiated, req.ICCID, req.UserID).
		WithDetails("device "+req.DeviceID))

	var profile *models.ESIMProfile
	err = s.withRetry(ctx, cfg, "activate", func() error {
		var callErr error
		profile, callErr = s.gateway.Activate(ctx, cfg, req.ICCID, carrier.ActivationRequest{
			DeviceID:   req.DeviceID,
			Parameters: req.Parameters,
		})
		return callErr
	})
	if err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileActivation, models.AuditStatusFailed, req.ICCID, req.UserID).
			WithDetails(err.Error()))
		return nil, fmt.Errorf("activate profile %s: %w", req.ICCID, err)
	}

	profile.CreatedAt = existing.CreatedAt
	profile.Version = existing.Version
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileActivation, models.AuditStatusFailed, req.ICCID, req.UserID).
			WithDetails(err.Error()))
		return nil, err
	}

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileActivation, models.AuditStatusCompleted, req.ICCID, req.UserID).
		WithDetails("device "+req.DeviceID))

	s.logger.Info().
		Str("iccid", req.ICCID).
		Str("carrier", cfg.CarrierCode).
		Str("device_id", req.DeviceID).
		Msg("profile activated")

	return profile, nil
}

// DownloadProfileRequest asks the carrier's SM-DP+ to deliver a profile.
type DownloadProfileRequest struct {
	ICCID       string `json:"iccid" binding:"required"`
	CarrierCode string `json:"carrier_code" binding:"required"`
	DeviceID    string `json:"device_id,omitempty"`
	UserID      string `json:"user_id"`
}

// DownloadProfile requests profile delivery from the carrier and persists the
// profile in the downloaded state with its activation code.
func (s *Service) DownloadProfile(ctx context.Context, req DownloadProfileRequest) (*models.ESIMProfile, error) {
	if !models.ValidICCID(req.ICCID) {
		return nil, fmt.Errorf("%q: %w", req.ICCID, ErrInvalidICCID)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required: %w", ErrValidation)
	}

	cfg, err := s.registry.Lookup(req.CarrierCode)
	if err != nil {
		return nil, err
	}

	release, err := s.lease.Acquire(ctx, req.ICCID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileDownload, models.AuditStatusInitiated, req.ICCID, req.UserID))

	var profile *models.ESIMProfile
	err = s.withRetry(ctx, cfg, "download", func() error {
		var callErr error
		profile, callErr = s.gateway.Download(ctx, cfg, req.ICCID, req.UserID)
		return callErr
	})
	if err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileDownload, models.AuditStatusFailed, req.ICCID, req.UserID).
			WithDetails(err.Error()))
		return nil, fmt.Errorf("download profile %s: %w", req.ICCID, err)
	}

	profile.DeviceID = req.DeviceID
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileDownload, models.AuditStatusFailed, req.ICCID, req.UserID).
			WithDetails(err.Error()))
		return nil, err
	}

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileDownload, models.AuditStatusCompleted, req.ICCID, req.UserID))
	return profile, nil
}

// SuspendProfile moves an enabled profile to disabled.
func (s *Service) SuspendProfile(ctx context.Context, iccid, userID string) (*models.ESIMProfile, error) {
	return s.transitionProfile(ctx, iccid, userID, models.ProfileStatusDisabled, models.AuditActionProfileSuspension)
}

// ReactivateProfile moves a disabled profile back to enabled.
func (s *Service) ReactivateProfile(ctx context.Context, iccid, userID string) (*models.ESIMProfile, error) {
	return s.transitionProfile(ctx, iccid, userID, models.ProfileStatusEnabled, models.AuditActionProfileReactivation)
}

// transitionProfile applies a local status transition under the ICCID lease,
// with an optimistic version check as the second line of defense: a
// concurrent writer surfaces as ErrConflict, never a lost update.
func (s *Service) transitionProfile(ctx context.Context, iccid, userID string, target models.ProfileStatus, action models.AuditAction) (*models.ESIMProfile, error) {
	if !models.ValidICCID(iccid) {
		return nil, fmt.Errorf("%q: %w", iccid, ErrInvalidICCID)
	}

	release, err := s.lease.Acquire(ctx, iccid)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, err := s.store.GetProfileByICCID(ctx, iccid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("iccid %s: %w", iccid, ErrProfileNotFound)
		}
		return nil, err
	}
	if !profile.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("profile %s cannot move from %s to %s: %w",
			iccid, profile.Status, target, ErrInvalidProfileState)
	}

	transition := fmt.Sprintf("%s -> %s", profile.Status, target)
	s.audit.Record(ctx, models.NewAuditLog(action, models.AuditStatusInitiated, iccid, userID).
		WithDetails(transition))

	if err := s.store.UpdateProfileStatus(ctx, iccid, target, profile.Version); err != nil {
		if errors.Is(err, db.ErrVersionConflict) {
			s.audit.Record(ctx, models.NewAuditLog(action, models.AuditStatusFailed, iccid, userID).
				WithDetails("concurrent update"))
			return nil, fmt.Errorf("profile %s changed concurrently: %w", iccid, ErrConflict)
		}
		s.audit.Record(ctx, models.NewAuditLog(action, models.AuditStatusFailed, iccid, userID).
			WithDetails(err.Error()))
		return nil, err
	}

	s.audit.Record(ctx, models.NewAuditLog(action, models.AuditStatusCompleted, iccid, userID).
		WithDetails(transition))

	profile.Status = target
	profile.Version++
	return profile, nil
}

// RevokeProfile revokes a profile at the carrier and marks it deleted.
// Revocation is terminal.
func (s *Service) RevokeProfile(ctx context.Context, iccid, reason, userID string) error {
	if !models.ValidICCID(iccid) {
		return fmt.Errorf("%q: %w", iccid, ErrInvalidICCID)
	}

	profile, err := s.store.GetProfileByICCID(ctx, iccid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("iccid %s: %w", iccid, ErrProfileNotFound)
		}
		return err
	}
	if profile.Status == models.ProfileStatusDeleted {
		return fmt.Errorf("profile %s is already deleted: %w", iccid, ErrInvalidProfileState)
	}

	cfg, err := s.registry.Lookup(profile.CarrierCode)
	if err != nil {
		return err
	}

	release, err := s.lease.Acquire(ctx, iccid)
	if err != nil {
		return err
	}
	defer release()

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileRevocation, models.AuditStatusInitiated, iccid, userID).
		WithDetails(reason))

	err = s.withRetry(ctx, cfg, "revoke", func() error {
		return s.gateway.Revoke(ctx, cfg, iccid, reason)
	})
	if err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileRevocation, models.AuditStatusFailed, iccid, userID).
			WithDetails(err.Error()))
		return fmt.Errorf("revoke profile %s: %w", iccid, err)
	}

	if err := s.store.UpdateProfileStatus(ctx, iccid, models.ProfileStatusDeleted, profile.Version); err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileRevocation, models.AuditStatusFailed, iccid, userID).
			WithDetails(err.Error()))
		if errors.Is(err, db.ErrVersionConflict) {
			return fmt.Errorf("profile %s changed concurrently: %w", iccid, ErrConflict)
		}
		return err
	}

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileRevocation, models.AuditStatusCompleted, iccid, userID).
		WithDetails(reason))
	return nil
}

// GetProfileStatus returns the stored profile for an ICCID.
func (s *Service) GetProfileStatus(ctx context.Context, iccid string) (*models.ESIMProfile, error) {
	if !models.ValidICCID(iccid) {
		return nil, fmt.Errorf("%q: %w", iccid, ErrInvalidICCID)
	}
	profile, err := s.store.GetProfileByICCID(ctx, iccid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("iccid %s: %w", iccid, ErrProfileNotFound)
		}
		return nil, err
	}
	return profile, nil
}

// GetTransferOperation returns a transfer operation by ID.
func (s *Service) GetTransferOperation(ctx context.Context, id uuid.UUID) (*models.TransferOperation, error) {
	op, err := s.store.GetTransferOperationByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("operation %s: %w", id, ErrOperationNotFound)
		}
		return nil, err
	}
	return op, nil
}

// RegisterDeviceRequest registers an end-user device.
type RegisterDeviceRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
	Platform   string `json:"platform" binding:"required"`
	Model      string `json:"model,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	EID        string `json:"eid,omitempty"`
	UserID     string `json:"user_id" binding:"required"`
}

// RegisterDevice registers a device and derives its eSIM capability.
// Capability is computed once here and never updated.
func (s *Service) RegisterDevice(ctx context.Context, req RegisterDeviceRequest) (*models.Device, error) {
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("device_id and user_id are required: %w", ErrValidation)
	}
	if strings.TrimSpace(req.DeviceType) == "" || strings.TrimSpace(req.Platform) == "" {
		return nil, fmt.Errorf("device_type and platform are required: %w", ErrValidation)
	}

	if _, err := s.store.GetDeviceByID(ctx, req.DeviceID); err == nil {
		return nil, fmt.Errorf("device %s: %w", req.DeviceID, ErrDeviceExists)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	device := models.NewDevice(req.DeviceID, req.DeviceType, req.Platform, req.Model, req.UserID)
	device.OSVersion = req.OSVersion
	device.EID = req.EID

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionDeviceRegistration, models.AuditStatusInitiated, req.DeviceID, req.UserID).
		WithDetails(req.DeviceType+"/"+req.Platform))

	if err := s.store.CreateDevice(ctx, device); err != nil {
		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionDeviceRegistration, models.AuditStatusFailed, req.DeviceID, req.UserID).
			WithDetails(err.Error()))
		return nil, err
	}

	s.audit.Record(ctx, models.NewAuditLog(models.AuditActionDeviceRegistration, models.AuditStatusCompleted, req.DeviceID, req.UserID).
		WithDetails(string(device.Capability)))

	s.logger.Info().
		Str("device_id", device.DeviceID).
		Str("capability", string(device.Capability)).
		Msg("device registered")

	return device, nil
}

func (s *Service) validateTransferRequest(req TransferProfileRequest) error {
	if !models.ValidICCID(req.ICCID) {
		return fmt.Errorf("%q: %w", req.ICCID, ErrInvalidICCID)
	}
	if req.SourceDeviceID == "" || req.TargetDeviceID == "" || req.UserID == "" {
		return fmt.Errorf("source_device_id, target_device_id and user_id are required: %w", ErrValidation)
	}
	if req.SourceDeviceID == req.TargetDeviceID {
		return fmt.Errorf("source and target devices must differ: %w", ErrValidation)
	}
	return nil
}

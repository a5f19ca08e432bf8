package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus represents the state of a cross-device profile transfer.
type TransferStatus string

const (
	// TransferStatusInitiated indicates the operation has been accepted and persisted.
	TransferStatusInitiated TransferStatus = "initiated"
	// TransferStatusInProgress indicates the carrier call is underway.
	TransferStatusInProgress TransferStatus = "in_progress"
	// TransferStatusCompleted indicates the carrier confirmed the transfer. Terminal.
	TransferStatusCompleted TransferStatus = "completed"
	// TransferStatusFailed indicates the operation failed. Terminal.
	TransferStatusFailed TransferStatus = "failed"
	// TransferStatusCancelled indicates the caller aborted the operation. Terminal.
	TransferStatusCancelled TransferStatus = "cancelled"
)

// IsTerminal reports whether the status is final. Terminal operations are
// never reopened.
func (s TransferStatus) IsTerminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusFailed, TransferStatusCancelled:
		return true
	}
	return false
}

// MapCarrierTransferStatus maps a remote carrier status string onto the
// internal enum. Any unrecognized value maps to failed so that a misbehaving
// carrier can never silently report success.
func MapCarrierTransferStatus(remote string) TransferStatus {
	switch remote {
	case "initiated":
		return TransferStatusInitiated
	case "in_progress":
		return TransferStatusInProgress
	case "completed":
		return TransferStatusCompleted
	case "failed":
		return TransferStatusFailed
	case "cancelled":
		return TransferStatusCancelled
	default:
		return TransferStatusFailed
	}
}

// TransferOperation represents one cross-device profile move.
type TransferOperation struct {
	OperationID    uuid.UUID      `json:"operation_id"`
	SourceDeviceID string         `json:"source_device_id"`
	TargetDeviceID string         `json:"target_device_id"`
	ProfileID      string         `json:"profile_id"`
	Status         TransferStatus `json:"status"`
	InitiatedAt    time.Time      `json:"initiated_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	UserID         string         `json:"user_id"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// NewTransferOperation creates an operation in the initiated state with a
// fresh operation ID.
func NewTransferOperation(sourceDeviceID, targetDeviceID, profileID, userID string) *TransferOperation {
	return &TransferOperation{
		OperationID:    uuid.New(),
		SourceDeviceID: sourceDeviceID,
		TargetDeviceID: targetDeviceID,
		ProfileID:      profileID,
		Status:         TransferStatusInitiated,
		InitiatedAt:    time.Now().UTC(),
		UserID:         userID,
	}
}

// Complete marks the operation completed with a completion timestamp.
func (o *TransferOperation) Complete() {
	now := time.Now().UTC()
	o.Status = TransferStatusCompleted
	o.CompletedAt = &now
}

// Fail marks the operation failed and records the error message. The
// operation record is the error channel for transfers.
func (o *TransferOperation) Fail(msg string) {
	now := time.Now().UTC()
	o.Status = TransferStatusFailed
	o.CompletedAt = &now
	o.ErrorMessage = msg
}

// Cancel marks the operation cancelled, distinguishing a caller-initiated
// abort from a remote failure.
func (o *TransferOperation) Cancel(msg string) {
	now := time.Now().UTC()
	o.Status = TransferStatusCancelled
	o.CompletedAt = &now
	o.ErrorMessage = msg
}

package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTransferOperation(t *testing.T) {
	op := NewTransferOperation("D1", "D2", "89014103211118510720", "U1")

	if op.OperationID == uuid.Nil {
		t.Error("expected OperationID to be set")
	}
	if op.Status != TransferStatusInitiated {
		t.Errorf("expected Status %s, got %s", TransferStatusInitiated, op.Status)
	}
	if op.SourceDeviceID != "D1" || op.TargetDeviceID != "D2" {
		t.Errorf("unexpected device IDs: %s -> %s", op.SourceDeviceID, op.TargetDeviceID)
	}
	if op.InitiatedAt.IsZero() {
		t.Error("expected InitiatedAt to be set")
	}
	if op.CompletedAt != nil {
		t.Error("expected CompletedAt to be nil")
	}
}

func TestMapCarrierTransferStatus(t *testing.T) {
	tests := []struct {
		remote string
		want   TransferStatus
	}{
		{"initiated", TransferStatusInitiated},
		{"in_progress", TransferStatusInProgress},
		{"completed", TransferStatusCompleted},
		{"failed", TransferStatusFailed},
		{"cancelled", TransferStatusCancelled},
		{"weird", TransferStatusFailed},
		{"COMPLETED", TransferStatusFailed},
		{"", TransferStatusFailed},
	}

	for _, tt := range tests {
		if got := MapCarrierTransferStatus(tt.remote); got != tt.want {
			t.Errorf("MapCarrierTransferStatus(%q): expected %s, got %s", tt.remote, tt.want, got)
		}
	}
}

func TestTransferStatusIsTerminal(t *testing.T) {
	terminal := []TransferStatus{TransferStatusCompleted, TransferStatusFailed, TransferStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []TransferStatus{TransferStatusInitiated, TransferStatusInProgress} {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestTransferOperationComplete(t *testing.T) {
	op := NewTransferOperation("D1", "D2", "89014103211118510720", "U1")
	op.Complete()

	if op.Status != TransferStatusCompleted {
		t.Errorf("expected Status %s, got %s", TransferStatusCompleted, op.Status)
	}
	if op.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestTransferOperationFail(t *testing.T) {
	op := NewTransferOperation("D1", "D2", "89014103211118510720", "U1")
	op.Fail("carrier unreachable")

	if op.Status != TransferStatusFailed {
		t.Errorf("expected Status %s, got %s", TransferStatusFailed, op.Status)
	}
	if op.ErrorMessage != "carrier unreachable" {
		t.Errorf("expected error message to be recorded, got %q", op.ErrorMessage)
	}
	if op.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestTransferOperationCancel(t *testing.T) {
	op := NewTransferOperation("D1", "D2", "89014103211118510720", "U1")
	op.Cancel("caller aborted")

	if op.Status != TransferStatusCancelled {
		t.Errorf("expected Status %s, got %s", TransferStatusCancelled, op.Status)
	}
	if op.ErrorMessage != "caller aborted" {
		t.Errorf("expected error message to be recorded, got %q", op.ErrorMessage)
	}
}

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nexorasim/entitlement/internal/models"
)

// CreateTransferOperation inserts a new transfer operation record.
func (db *DB) CreateTransferOperation(ctx context.Context, op *models.TransferOperation) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO transfer_operations (operation_id, source_device_id, target_device_id,
		                                 profile_id, status, initiated_at, completed_at,
		                                 user_id, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, op.OperationID, op.SourceDeviceID, op.TargetDeviceID,
		op.ProfileID, string(op.Status), op.InitiatedAt, op.CompletedAt,
		op.UserID, op.ErrorMessage)
	if err != nil {
		return fmt.Errorf("create transfer operation: %w", err)
	}
	return nil
}

// UpdateTransferOperation updates the mutable fields of an operation. Terminal
// records are never reopened; the guard is enforced here rather than trusted
// to callers.
func (db *DB) UpdateTransferOperation(ctx context.Context, op *models.TransferOperation) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE transfer_operations
		SET status = $2, completed_at = $3, error_message = $4
		WHERE operation_id = $1
		  AND status NOT IN ('completed', 'failed', 'cancelled')
	`, op.OperationID, string(op.Status), op.CompletedAt, op.ErrorMessage)
	if err != nil {
		return fmt.Errorf("update transfer operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update transfer operation %s: %w", op.OperationID, ErrNotFound)
	}
	return nil
}

// GetTransferOperationByID returns a single operation by ID.
func (db *DB) GetTransferOperationByID(ctx context.Context, id uuid.UUID) (*models.TransferOperation, error) {
	var op models.TransferOperation
	var status string
	err := db.Pool.QueryRow(ctx, `
		SELECT operation_id, source_device_id, target_device_id, profile_id,
		       status, initiated_at, completed_at, user_id, error_message
		FROM transfer_operations
		WHERE operation_id = $1
	`, id).Scan(&op.OperationID, &op.SourceDeviceID, &op.TargetDeviceID, &op.ProfileID,
		&status, &op.InitiatedAt, &op.CompletedAt, &op.UserID, &op.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transfer operation: %w", err)
	}
	op.Status = models.TransferStatus(status)
	return &op, nil
}

// GetStaleTransferOperations returns non-terminal operations initiated before
// the cutoff, for the reconciliation sweep.
func (db *DB) GetStaleTransferOperations(ctx context.Context, cutoff time.Time, limit int) ([]*models.TransferOperation, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT operation_id, source_device_id, target_device_id, profile_id,
		       status, initiated_at, completed_at, user_id, error_message
		FROM transfer_operations
		WHERE status IN ('initiated', 'in_progress')
		  AND initiated_at < $1
		ORDER BY initiated_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("get stale transfer operations: %w", err)
	}
	defer rows.Close()

	var ops []*models.TransferOperation
	for rows.Next() {
		var op models.TransferOperation
		var status string
		if err := rows.Scan(&op.OperationID, &op.SourceDeviceID, &op.TargetDeviceID, &op.ProfileID,
			&status, &op.InitiatedAt, &op.CompletedAt, &op.UserID, &op.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan transfer operation: %w", err)
		}
		op.Status = models.TransferStatus(status)
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer operations: %w", err)
	}

	return ops, nil
}

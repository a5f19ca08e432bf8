package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexorasim/entitlement/internal/models"
)

// AuditLogFilter defines filters for querying audit logs.
type AuditLogFilter struct {
	Action     string
	Status     string
	ResourceID string
	UserID     string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// CreateAuditLog inserts a new audit log entry. Entries are append-only.
func (db *DB) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO audit_logs (log_id, timestamp, user_id, action, resource_type,
		                        resource_id, status, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, log.LogID, log.Timestamp, log.UserID, string(log.Action), log.ResourceType,
		log.ResourceID, string(log.Status), log.Details, log.IPAddress, log.UserAgent)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// GetAuditLogs returns audit logs with optional filtering, newest first.
func (db *DB) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]*models.AuditLog, error) {
	query := `
		SELECT log_id, timestamp, user_id, action, resource_type,
		       resource_id, status, details, ip_address, user_agent
		FROM audit_logs
		WHERE 1=1
	`
	var args []any
	argIdx := 1

	query, args, argIdx = appendAuditLogFilters(query, args, argIdx, filter)

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		var action, status string
		if err := rows.Scan(&log.LogID, &log.Timestamp, &log.UserID, &action, &log.ResourceType,
			&log.ResourceID, &status, &log.Details, &log.IPAddress, &log.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		log.Action = models.AuditAction(action)
		log.Status = models.AuditStatus(status)
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}

// CountAuditLogs returns the count of audit logs matching the filter.
func (db *DB) CountAuditLogs(ctx context.Context, filter AuditLogFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM audit_logs WHERE 1=1`
	var args []any
	argIdx := 1

	query, args, _ = appendAuditLogFilters(query, args, argIdx, filter)

	var count int64
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return count, nil
}

// appendAuditLogFilters appends WHERE clauses for the given filter to the query.
func appendAuditLogFilters(query string, args []any, argIdx int, filter AuditLogFilter) (string, []any, int) {
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.ResourceID != "" {
		query += fmt.Sprintf(" AND resource_id = $%d", argIdx)
		args = append(args, strings.TrimSpace(filter.ResourceID))
		argIdx++
	}

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND timestamp <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	return query, args, argIdx
}

// Package audit records compliance audit events. Recording never fails the
// business operation that triggered it; sink errors are logged and dropped.
package audit

import (
	"context"

	"github.com/nexorasim/entitlement/internal/models"
	"github.com/rs/zerolog"
)

// Recorder accepts audit entries. Implementations must not return errors to
// callers; an audit sink outage must not block profile operations.
type Recorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Store is the persistence surface a database-backed recorder needs.
type Store interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// DBRecorder persists audit entries to the audit_logs table.
type DBRecorder struct {
	store  Store
	logger zerolog.Logger
}

// NewDBRecorder creates a database-backed audit recorder.
func NewDBRecorder(store Store, logger zerolog.Logger) *DBRecorder {
	return &DBRecorder{
		store:  store,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record persists the entry. A failed write is logged at warn level and
// otherwise swallowed.
func (r *DBRecorder) Record(ctx context.Context, entry *models.AuditLog) {
	if err := r.store.CreateAuditLog(ctx, entry); err != nil {
		r.logger.Warn().
			Err(err).
			Str("action", string(entry.Action)).
			Str("resource_id", entry.ResourceID).
			Msg("failed to persist audit entry")
	}
}

// LogRecorder emits audit entries as structured log lines. Used as a
// secondary sink so entries survive in the log stream even when the database
// write fails.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a log-backed audit recorder.
func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

func (r *LogRecorder) Record(_ context.Context, entry *models.AuditLog) {
	r.logger.Info().
		Str("log_id", entry.LogID.String()).
		Str("action", string(entry.Action)).
		Str("status", string(entry.Status)).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("user_id", entry.UserID).
		Str("details", entry.Details).
		Msg("audit event")
}

// MultiRecorder fans an entry out to every configured recorder.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a recorder that writes to all given recorders.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

func (r *MultiRecorder) Record(ctx context.Context, entry *models.AuditLog) {
	for _, rec := range r.recorders {
		rec.Record(ctx, entry)
	}
}

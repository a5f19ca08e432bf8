// Package reconcile closes transfer operations abandoned mid-flight, e.g.
// after a crash between the carrier call and the outcome write, or when a
// carrier never settles an in-progress transfer.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/audit"
	"github.com/nexorasim/entitlement/internal/metrics"
	"github.com/nexorasim/entitlement/internal/models"
)

// sweepBatchSize bounds how many stale operations one sweep closes.
const sweepBatchSize = 100

// Store is the persistence surface the sweeper needs.
type Store interface {
	GetStaleTransferOperations(ctx context.Context, cutoff time.Time, limit int) ([]*models.TransferOperation, error)
	UpdateTransferOperation(ctx context.Context, op *models.TransferOperation) error
}

// Sweeper periodically fails transfer operations that have been non-terminal
// for longer than the stale age.
type Sweeper struct {
	store    Store
	audit    audit.Recorder
	staleAge time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger
}

// New creates a sweeper. staleAge is how long an operation may stay
// non-terminal before the sweep closes it.
func New(store Store, recorder audit.Recorder, staleAge time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		audit:    recorder,
		staleAge: staleAge,
		logger:   logger.With().Str("component", "reconcile").Logger(),
	}
}

// Start schedules the sweep at the given interval and runs until Stop.
func (s *Sweeper) Start(interval time.Duration) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error().Err(err).Msg("reconciliation sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reconciliation sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info().Dur("interval", interval).Dur("stale_age", s.staleAge).Msg("reconciliation sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep closes all operations stale as of now and returns how many it closed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.staleAge)
	ops, err := s.store.GetStaleTransferOperations(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("load stale operations: %w", err)
	}

	closed := 0
	for _, op := range ops {
		op.Fail(fmt.Sprintf("operation stale since %s, closed by reconciliation", op.InitiatedAt.Format(time.RFC3339)))
		if err := s.store.UpdateTransferOperation(ctx, op); err != nil {
			// Another writer may have settled it concurrently; skip it.
			s.logger.Warn().Err(err).
				Str("operation_id", op.OperationID.String()).
				Msg("failed to close stale operation")
			continue
		}
		closed++
		metrics.StaleOperationsReconciled.Inc()

		s.audit.Record(ctx, models.NewAuditLog(models.AuditActionProfileTransfer, models.AuditStatusFailed, op.ProfileID, op.UserID).
			WithDetails(fmt.Sprintf("operation %s: %s", op.OperationID, op.ErrorMessage)))

		s.logger.Info().
			Str("operation_id", op.OperationID.String()).
			Str("iccid", op.ProfileID).
			Time("initiated_at", op.InitiatedAt).
			Msg("closed stale transfer operation")
	}

	return closed, nil
}

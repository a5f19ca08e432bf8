//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/nexorasim/entitlement/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *DB

func TestMain(m *testing.M) {
	if !dockerAvailable() {
		fmt.Println("Docker is not available, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("entitlement_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter())
	cfg := DefaultConfig(connStr)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	testDB, err = New(ctx, cfg, logger)
	if err != nil {
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := testDB.Migrate(ctx); err != nil {
		testDB.Close()
		pgContainer.Terminate(ctx)
		log.Fatalf("failed to run migrations: %v", err)
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

// dockerAvailable returns true if a Docker daemon is reachable.
func dockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB returns the shared test database after cleaning all tables.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	cleanTables(t, testDB)
	return testDB
}

// cleanTables truncates all user tables between tests for isolation.
func cleanTables(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		DO $$ DECLARE r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename != 'schema_migrations') LOOP
				EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`)
	require.NoError(t, err)
}

// createTestProfile creates and persists an enabled test profile.
func createTestProfile(t *testing.T, db *DB, iccid, carrierCode, deviceID string) *models.ESIMProfile {
	t.Helper()
	p := models.NewESIMProfile(iccid, carrierCode, deviceID)
	p.Status = models.ProfileStatusEnabled
	err := db.UpsertProfile(context.Background(), p)
	require.NoError(t, err)
	return p
}

func TestStore_Profiles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("UpsertAndGet", func(t *testing.T) {
		p := createTestProfile(t, db, "89014103211118510720", "MPT", "D1")

		got, err := db.GetProfileByICCID(ctx, p.ICCID)
		require.NoError(t, err)
		assert.Equal(t, p.ICCID, got.ICCID)
		assert.Equal(t, models.ProfileStatusEnabled, got.Status)
		assert.Equal(t, "MPT", got.CarrierCode)
		assert.EqualValues(t, 1, got.Version)
	})

	t.Run("UpsertBumpsVersion", func(t *testing.T) {
		p := createTestProfile(t, db, "89014103211118510721", "ATOM", "D1")

		p.DeviceID = "D2"
		require.NoError(t, db.UpsertProfile(ctx, p))

		got, err := db.GetProfileByICCID(ctx, p.ICCID)
		require.NoError(t, err)
		assert.Equal(t, "D2", got.DeviceID)
		assert.EqualValues(t, 2, got.Version)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetProfileByICCID(ctx, "8901410321111851999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("OptimisticStatusUpdate", func(t *testing.T) {
		p := createTestProfile(t, db, "89014103211118510722", "MYTEL", "D3")

		err := db.UpdateProfileStatus(ctx, p.ICCID, models.ProfileStatusDisabled, 1)
		require.NoError(t, err)

		// Stale version must be rejected.
		err = db.UpdateProfileStatus(ctx, p.ICCID, models.ProfileStatusEnabled, 1)
		assert.ErrorIs(t, err, ErrVersionConflict)

		got, err := db.GetProfileByICCID(ctx, p.ICCID)
		require.NoError(t, err)
		assert.Equal(t, models.ProfileStatusDisabled, got.Status)
		assert.EqualValues(t, 2, got.Version)
	})

	t.Run("ByDevice", func(t *testing.T) {
		createTestProfile(t, db, "89014103211118510723", "U9", "D9")
		createTestProfile(t, db, "89014103211118510724", "U9", "D9")

		profiles, err := db.GetProfilesByDeviceID(ctx, "D9")
		require.NoError(t, err)
		assert.Len(t, profiles, 2)
	})
}

func TestStore_Devices(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := models.NewDevice("D1", "smartphone", "ios", "iPhone 15 Pro", "U1")
	require.NoError(t, db.CreateDevice(ctx, d))

	got, err := db.GetDeviceByID(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, models.CapabilityDualESIM, got.Capability)
	assert.Equal(t, "U1", got.UserID)

	_, err = db.GetDeviceByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	devices, err := db.GetDevicesByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestStore_TransferOperations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("CreateUpdateGet", func(t *testing.T) {
		op := models.NewTransferOperation("D1", "D2", "89014103211118510720", "U1")
		require.NoError(t, db.CreateTransferOperation(ctx, op))

		op.Complete()
		require.NoError(t, db.UpdateTransferOperation(ctx, op))

		got, err := db.GetTransferOperationByID(ctx, op.OperationID)
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("TerminalNeverReopened", func(t *testing.T) {
		op := models.NewTransferOperation("D1", "D2", "89014103211118510721", "U1")
		require.NoError(t, db.CreateTransferOperation(ctx, op))

		op.Fail("carrier unreachable")
		require.NoError(t, db.UpdateTransferOperation(ctx, op))

		op.Status = models.TransferStatusInProgress
		err := db.UpdateTransferOperation(ctx, op)
		assert.Error(t, err)

		got, err := db.GetTransferOperationByID(ctx, op.OperationID)
		require.NoError(t, err)
		assert.Equal(t, models.TransferStatusFailed, got.Status)
	})

	t.Run("StaleSweep", func(t *testing.T) {
		stale := models.NewTransferOperation("D1", "D2", "89014103211118510722", "U1")
		stale.InitiatedAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, db.CreateTransferOperation(ctx, stale))

		fresh := models.NewTransferOperation("D1", "D2", "89014103211118510723", "U1")
		require.NoError(t, db.CreateTransferOperation(ctx, fresh))

		ops, err := db.GetStaleTransferOperations(ctx, time.Now().UTC().Add(-30*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, stale.OperationID, ops[0].OperationID)
	})
}

func TestStore_AuditLogs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := models.NewAuditLog(models.AuditActionProfileTransfer, models.AuditStatusInitiated, "89014103211118510720", "U1")
		require.NoError(t, db.CreateAuditLog(ctx, entry))
	}
	other := models.NewAuditLog(models.AuditActionDeviceRegistration, models.AuditStatusCompleted, "D1", "U2")
	require.NoError(t, db.CreateAuditLog(ctx, other))

	logs, err := db.GetAuditLogs(ctx, AuditLogFilter{ResourceID: "89014103211118510720"})
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	count, err := db.CountAuditLogs(ctx, AuditLogFilter{Action: string(models.AuditActionDeviceRegistration)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	limited, err := db.GetAuditLogs(ctx, AuditLogFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

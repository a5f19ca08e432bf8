package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nexorasim/entitlement/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned when an optimistic write observed a stale
// profile version.
var ErrVersionConflict = errors.New("profile version conflict")

// UpsertProfile inserts or updates a profile keyed by ICCID. The write is a
// single atomic statement; the version column is bumped on update.
func (db *DB) UpsertProfile(ctx context.Context, p *models.ESIMProfile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (iccid, imsi, carrier_code, device_id, status,
		                      created_at, activated_at, activation_code, smdp_address, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (iccid) DO UPDATE SET
			imsi = EXCLUDED.imsi,
			carrier_code = EXCLUDED.carrier_code,
			device_id = EXCLUDED.device_id,
			status = EXCLUDED.status,
			activated_at = EXCLUDED.activated_at,
			activation_code = EXCLUDED.activation_code,
			smdp_address = EXCLUDED.smdp_address,
			version = profiles.version + 1
	`, p.ICCID, p.IMSI, p.CarrierCode, p.DeviceID, string(p.Status),
		p.CreatedAt, p.ActivatedAt, p.ActivationCode, p.SMDPAddress, p.Version)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// UpdateProfileStatus transitions a profile's status only if the stored
// version still matches, guarding concurrent writers.
func (db *DB) UpdateProfileStatus(ctx context.Context, iccid string, status models.ProfileStatus, expectedVersion int64) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE profiles
		SET status = $2, version = version + 1
		WHERE iccid = $1 AND version = $3
	`, iccid, string(status), expectedVersion)
	if err != nil {
		return fmt.Errorf("update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// GetProfileByICCID returns a single profile by ICCID.
func (db *DB) GetProfileByICCID(ctx context.Context, iccid string) (*models.ESIMProfile, error) {
	var p models.ESIMProfile
	var status string
	err := db.Pool.QueryRow(ctx, `
		SELECT iccid, imsi, carrier_code, device_id, status,
		       created_at, activated_at, activation_code, smdp_address, version
		FROM profiles
		WHERE iccid = $1
	`, iccid).Scan(&p.ICCID, &p.IMSI, &p.CarrierCode, &p.DeviceID, &status,
		&p.CreatedAt, &p.ActivatedAt, &p.ActivationCode, &p.SMDPAddress, &p.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Status = models.ProfileStatus(status)
	return &p, nil
}

// GetProfilesByDeviceID returns all profiles bound to a device.
func (db *DB) GetProfilesByDeviceID(ctx context.Context, deviceID string) ([]*models.ESIMProfile, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT iccid, imsi, carrier_code, device_id, status,
		       created_at, activated_at, activation_code, smdp_address, version
		FROM profiles
		WHERE device_id = $1
		ORDER BY created_at DESC
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get profiles by device: %w", err)
	}
	defer rows.Close()

	var profiles []*models.ESIMProfile
	for rows.Next() {
		var p models.ESIMProfile
		var status string
		if err := rows.Scan(&p.ICCID, &p.IMSI, &p.CarrierCode, &p.DeviceID, &status,
			&p.CreatedAt, &p.ActivatedAt, &p.ActivationCode, &p.SMDPAddress, &p.Version); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Status = models.ProfileStatus(status)
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

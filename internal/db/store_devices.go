package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nexorasim/entitlement/internal/models"
)

// CreateDevice inserts a new device record.
func (db *DB) CreateDevice(ctx context.Context, d *models.Device) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO devices (device_id, eid, device_type, platform, model,
		                     os_version, capability, user_id, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.DeviceID, d.EID, d.DeviceType, d.Platform, d.Model,
		d.OSVersion, string(d.Capability), d.UserID, d.RegisteredAt)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

// GetDeviceByID returns a single device by ID.
func (db *DB) GetDeviceByID(ctx context.Context, deviceID string) (*models.Device, error) {
	var d models.Device
	var capability string
	err := db.Pool.QueryRow(ctx, `
		SELECT device_id, eid, device_type, platform, model,
		       os_version, capability, user_id, registered_at
		FROM devices
		WHERE device_id = $1
	`, deviceID).Scan(&d.DeviceID, &d.EID, &d.DeviceType, &d.Platform, &d.Model,
		&d.OSVersion, &capability, &d.UserID, &d.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	d.Capability = models.DeviceCapability(capability)
	return &d, nil
}

// GetDevicesByUserID returns all devices registered to a user.
func (db *DB) GetDevicesByUserID(ctx context.Context, userID string) ([]*models.Device, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT device_id, eid, device_type, platform, model,
		       os_version, capability, user_id, registered_at
		FROM devices
		WHERE user_id = $1
		ORDER BY registered_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get devices by user: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		var d models.Device
		var capability string
		if err := rows.Scan(&d.DeviceID, &d.EID, &d.DeviceType, &d.Platform, &d.Model,
			&d.OSVersion, &capability, &d.UserID, &d.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		d.Capability = models.DeviceCapability(capability)
		devices = append(devices, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}

	return devices, nil
}

package models

import (
	"strings"
	"time"
)

// DeviceCapability describes how many eSIM profiles a device can hold.
type DeviceCapability string

const (
	// CapabilitySingleESIM indicates the device supports one eSIM profile.
	CapabilitySingleESIM DeviceCapability = "single_esim"
	// CapabilityDualESIM indicates the device supports two concurrent profiles.
	CapabilityDualESIM DeviceCapability = "dual_esim"
	// CapabilityMultipleESIM indicates the device supports more than two profiles.
	CapabilityMultipleESIM DeviceCapability = "multiple_esim"
)

// Device represents a managed end-user device. Capability is derived once at
// registration and immutable afterwards.
type Device struct {
	DeviceID     string           `json:"device_id"`
	EID          string           `json:"eid,omitempty"`
	DeviceType   string           `json:"device_type"`
	Platform     string           `json:"platform"`
	Model        string           `json:"model,omitempty"`
	OSVersion    string           `json:"os_version,omitempty"`
	Capability   DeviceCapability `json:"capability"`
	UserID       string           `json:"user_id"`
	RegisteredAt time.Time        `json:"registered_at"`
}

// NewDevice creates a Device with its capability derived from type, platform
// and model.
func NewDevice(deviceID, deviceType, platform, model, userID string) *Device {
	return &Device{
		DeviceID:     deviceID,
		DeviceType:   deviceType,
		Platform:     platform,
		Model:        model,
		Capability:   DeriveDeviceCapability(deviceType, platform, model),
		UserID:       userID,
		RegisteredAt: time.Now().UTC(),
	}
}

// DeriveDeviceCapability maps (deviceType, platform, model) to an eSIM
// capability. Unmatched combinations default to single eSIM rather than
// failing; unknown hardware can always hold at least one profile.
func DeriveDeviceCapability(deviceType, platform, model string) DeviceCapability {
	dt := strings.ToLower(strings.TrimSpace(deviceType))
	pf := strings.ToLower(strings.TrimSpace(platform))

	switch {
	case dt == "smartphone" && pf == "ios" && strings.Contains(model, "iPhone"):
		return CapabilityDualESIM
	case dt == "smartphone" && pf == "android":
		return CapabilitySingleESIM
	case dt == "tablet", dt == "smartwatch":
		return CapabilitySingleESIM
	default:
		return CapabilitySingleESIM
	}
}

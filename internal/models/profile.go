package models

import "time"

// ProfileStatus represents the lifecycle state of an eSIM profile.
type ProfileStatus string

const (
	// ProfileStatusCreated indicates the profile has been allocated but not downloaded.
	ProfileStatusCreated ProfileStatus = "created"
	// ProfileStatusDownloaded indicates the profile has been delivered to a device.
	ProfileStatusDownloaded ProfileStatus = "downloaded"
	// ProfileStatusInstalled indicates the profile is installed but not yet enabled.
	ProfileStatusInstalled ProfileStatus = "installed"
	// ProfileStatusEnabled indicates the profile is installed and active.
	ProfileStatusEnabled ProfileStatus = "enabled"
	// ProfileStatusDisabled indicates the profile has been suspended.
	ProfileStatusDisabled ProfileStatus = "disabled"
	// ProfileStatusDeleted indicates the profile has been revoked. Terminal.
	ProfileStatusDeleted ProfileStatus = "deleted"
)

// profileTransitions is the allowed state graph. Progression is monotonic
// except for enabled<->disabled (suspend/reactivate).
var profileTransitions = map[ProfileStatus][]ProfileStatus{
	ProfileStatusCreated:    {ProfileStatusDownloaded, ProfileStatusDeleted},
	ProfileStatusDownloaded: {ProfileStatusInstalled, ProfileStatusEnabled, ProfileStatusDeleted},
	ProfileStatusInstalled:  {ProfileStatusEnabled, ProfileStatusDeleted},
	ProfileStatusEnabled:    {ProfileStatusDisabled, ProfileStatusDeleted},
	ProfileStatusDisabled:   {ProfileStatusEnabled, ProfileStatusDeleted},
	ProfileStatusDeleted:    {},
}

// CanTransitionTo reports whether the status may move to the target state.
func (s ProfileStatus) CanTransitionTo(target ProfileStatus) bool {
	for _, next := range profileTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ProfileStatus) IsTerminal() bool {
	return len(profileTransitions[s]) == 0
}

// ESIMProfile represents one eSIM credential. The ICCID is the primary key and
// must be a 19-20 digit numeric string.
type ESIMProfile struct {
	ICCID          string        `json:"iccid"`
	IMSI           string        `json:"imsi"`
	CarrierCode    string        `json:"carrier_code"`
	DeviceID       string        `json:"device_id"`
	Status         ProfileStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	ActivatedAt    *time.Time    `json:"activated_at,omitempty"`
	ActivationCode string        `json:"activation_code,omitempty"`
	SMDPAddress    string        `json:"smdp_address,omitempty"`
	// Version is bumped on every write and used as an optimistic concurrency stamp.
	Version int64 `json:"version"`
}

// NewESIMProfile creates a profile in the created state.
func NewESIMProfile(iccid, carrierCode, deviceID string) *ESIMProfile {
	return &ESIMProfile{
		ICCID:       iccid,
		CarrierCode: carrierCode,
		DeviceID:    deviceID,
		Status:      ProfileStatusCreated,
		CreatedAt:   time.Now().UTC(),
		Version:     1,
	}
}

// ValidICCID reports whether s is a 19-20 digit numeric string.
func ValidICCID(s string) bool {
	if len(s) < 19 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

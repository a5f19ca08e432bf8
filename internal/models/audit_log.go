package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action that was audited.
type AuditAction string

const (
	// Orchestrator actions
	AuditActionProfileTransfer     AuditAction = "ProfileTransfer"
	AuditActionProfileActivation   AuditAction = "ProfileActivation"
	AuditActionProfileDownload     AuditAction = "ProfileDownload"
	AuditActionProfileSuspension   AuditAction = "ProfileSuspension"
	AuditActionProfileReactivation AuditAction = "ProfileReactivation"
	AuditActionProfileRevocation   AuditAction = "ProfileRevocation"
	AuditActionDeviceRegistration  AuditAction = "DeviceRegistration"

	// Carrier gateway actions
	AuditActionCarrierTransfer   AuditAction = "CarrierTransfer"
	AuditActionCarrierActivation AuditAction = "CarrierActivation"
)

// AuditStatus represents the outcome recorded with an audit entry.
type AuditStatus string

const (
	// AuditStatusInitiated is emitted before the state-changing work begins.
	AuditStatusInitiated AuditStatus = "Initiated"
	// AuditStatusCompleted is emitted when the work succeeded.
	AuditStatusCompleted AuditStatus = "Completed"
	// AuditStatusFailed is emitted when the work failed.
	AuditStatusFailed AuditStatus = "Failed"
	// AuditStatusCancelled is emitted when the caller aborted the work.
	AuditStatusCancelled AuditStatus = "Cancelled"
)

// AuditLog is a single append-only audit entry. Entries are write-once and
// never mutated after creation.
type AuditLog struct {
	LogID        uuid.UUID   `json:"log_id"`
	Timestamp    time.Time   `json:"timestamp"`
	UserID       string      `json:"user_id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	Status       AuditStatus `json:"status"`
	Details      string      `json:"details,omitempty"`
	IPAddress    string      `json:"ip_address,omitempty"`
	UserAgent    string      `json:"user_agent,omitempty"`
}

// NewAuditLog creates a new audit entry stamped with the current time.
func NewAuditLog(action AuditAction, status AuditStatus, resourceID, userID string) *AuditLog {
	return &AuditLog{
		LogID:        uuid.New(),
		Timestamp:    time.Now().UTC(),
		Action:       action,
		ResourceType: resourceTypeFor(action),
		ResourceID:   resourceID,
		Status:       status,
		UserID:       userID,
	}
}

// WithDetails sets additional free-text details about the action.
func (a *AuditLog) WithDetails(details string) *AuditLog {
	a.Details = details
	return a
}

// WithRequestInfo sets HTTP request information.
func (a *AuditLog) WithRequestInfo(ipAddress, userAgent string) *AuditLog {
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}

func resourceTypeFor(action AuditAction) string {
	switch action {
	case AuditActionDeviceRegistration:
		return "device"
	default:
		return "profile"
	}
}

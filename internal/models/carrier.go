package models

// AuthMethodCertificate is the only authentication method currently issued to
// carriers; the field is kept open-ended for future token-based integrations.
const AuthMethodCertificate = "certificate"

// CarrierConfig is an immutable per-carrier connection descriptor. Instances
// are created once at process start from the static seed data and are never
// mutated afterwards.
type CarrierConfig struct {
	CarrierCode          string `json:"carrier_code"`
	CarrierName          string `json:"carrier_name"`
	MCC                  string `json:"mcc"`
	MNC                  string `json:"mnc"`
	Country              string `json:"country"`
	SMDPAddress          string `json:"smdp_address"`
	Supports5G           bool   `json:"supports_5g"`
	SupportsVoLTE        bool   `json:"supports_volte"`
	ProfileTemplate      string `json:"profile_template"`
	AuthenticationMethod string `json:"authentication_method"`
	CertificatePath      string `json:"-"`
	APIEndpoint          string `json:"api_endpoint"`
	TimeoutSeconds       int    `json:"timeout_seconds"`
	RetryAttempts        int    `json:"retry_attempts"`
	ComplianceLevel      string `json:"compliance_level"`
}

// PLMN returns the public land mobile network identifier (MCC+MNC).
func (c CarrierConfig) PLMN() string {
	return c.MCC + c.MNC
}

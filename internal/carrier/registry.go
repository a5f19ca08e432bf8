// Package carrier provides the carrier registry and the HTTP gateway used to
// reach carrier eSIM provisioning APIs.
package carrier

import (
	"fmt"
	"sort"

	"github.com/nexorasim/entitlement/internal/models"
)

// ErrUnknownCarrier is returned when a carrier code has no registered
// configuration. Callers must treat this as non-retryable.
var ErrUnknownCarrier = fmt.Errorf("unknown carrier")

// Registry maps carrier codes to their connection configuration. It is built
// once at startup from static seed data and is immutable afterwards; carrier
// endpoints are never taken from user input.
type Registry struct {
	carriers map[string]models.CarrierConfig
}

// NewRegistry creates a registry with the production carrier seed data.
func NewRegistry() *Registry {
	return NewRegistryWithCarriers(seedCarriers())
}

// NewRegistryWithCarriers creates a registry from explicit configs. Used by
// tests to point the gateway at stub servers.
func NewRegistryWithCarriers(configs []models.CarrierConfig) *Registry {
	carriers := make(map[string]models.CarrierConfig, len(configs))
	for _, c := range configs {
		carriers[c.CarrierCode] = c
	}
	return &Registry{carriers: carriers}
}

// Lookup returns the configuration for a carrier code.
func (r *Registry) Lookup(code string) (models.CarrierConfig, error) {
	cfg, ok := r.carriers[code]
	if !ok {
		return models.CarrierConfig{}, fmt.Errorf("%w: %s", ErrUnknownCarrier, code)
	}
	return cfg, nil
}

// List returns all carrier configurations ordered by carrier code.
func (r *Registry) List() []models.CarrierConfig {
	configs := make([]models.CarrierConfig, 0, len(r.carriers))
	for _, c := range r.carriers {
		configs = append(configs, c)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].CarrierCode < configs[j].CarrierCode
	})
	return configs
}

// seedCarriers returns the static carrier onboarding data. New carriers are
// added here and shipped with a release, never configured at runtime.
func seedCarriers() []models.CarrierConfig {
	return []models.CarrierConfig{
		{
			CarrierCode:          "MPT",
			CarrierName:          "Myanmar Posts and Telecommunications",
			MCC:                  "414",
			MNC:                  "01",
			Country:              "Myanmar",
			SMDPAddress:          "smdp.mpt.com.mm",
			Supports5G:           true,
			SupportsVoLTE:        true,
			ProfileTemplate:      "mpt-profile-template",
			AuthenticationMethod: models.AuthMethodCertificate,
			CertificatePath:      "certificates/mpt-client.p12",
			APIEndpoint:          "https://api.mpt.com.mm/esim/v1",
			TimeoutSeconds:       30,
			RetryAttempts:        3,
			ComplianceLevel:      "GSMA-SGP22",
		},
		{
			CarrierCode:          "ATOM",
			CarrierName:          "Atom Myanmar",
			MCC:                  "414",
			MNC:                  "09",
			Country:              "Myanmar",
			SMDPAddress:          "smdp.atom.com.mm",
			Supports5G:           true,
			SupportsVoLTE:        true,
			ProfileTemplate:      "atom-profile-template",
			AuthenticationMethod: models.AuthMethodCertificate,
			CertificatePath:      "certificates/atom-client.p12",
			APIEndpoint:          "https://api.atom.com.mm/esim/v1",
			TimeoutSeconds:       30,
			RetryAttempts:        3,
			ComplianceLevel:      "GSMA-SGP22",
		},
		{
			CarrierCode:          "U9",
			CarrierName:          "U9 Networks",
			MCC:                  "414",
			MNC:                  "99",
			Country:              "Myanmar",
			SMDPAddress:          "smdp.u9.com.mm",
			Supports5G:           false,
			SupportsVoLTE:        true,
			ProfileTemplate:      "u9-profile-template",
			AuthenticationMethod: models.AuthMethodCertificate,
			CertificatePath:      "certificates/u9-client.p12",
			APIEndpoint:          "https://api.u9.com.mm/esim/v1",
			TimeoutSeconds:       30,
			RetryAttempts:        3,
			ComplianceLevel:      "GSMA-SGP22",
		},
		{
			CarrierCode:          "MYTEL",
			CarrierName:          "MyTel",
			MCC:                  "414",
			MNC:                  "05",
			Country:              "Myanmar",
			SMDPAddress:          "smdp.mytel.com.mm",
			Supports5G:           true,
			SupportsVoLTE:        true,
			ProfileTemplate:      "mytel-profile-template",
			AuthenticationMethod: models.AuthMethodCertificate,
			CertificatePath:      "certificates/mytel-client.p12",
			APIEndpoint:          "https://api.mytel.com.mm/esim/v1",
			TimeoutSeconds:       30,
			RetryAttempts:        3,
			ComplianceLevel:      "GSMA-SGP22",
		},
	}
}

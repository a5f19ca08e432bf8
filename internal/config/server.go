// Package config provides configuration management for the entitlement server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	ListenAddr  string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// CORSOrigins is the allowed CORS origin list. Empty allows all origins
	// outside production.
	CORSOrigins []string

	// RedisAddr enables the distributed per-ICCID lease when set. Empty means
	// the in-process lease is used (single-instance deployments).
	RedisAddr     string
	RedisPassword string

	// OIDCIssuer/OIDCClientID configure bearer-token validation. When unset,
	// DevAPIToken is the only accepted credential.
	OIDCIssuer   string
	OIDCClientID string
	DevAPIToken  string

	// RateLimitRequests per RateLimitPeriod, enforced per caller on the API.
	RateLimitRequests int64
	RateLimitPeriod   time.Duration

	// ReconcileInterval is how often the stale-operation sweep runs.
	ReconcileInterval time.Duration
	// StaleOperationAge is how old a non-terminal operation must be before the
	// sweep fails it out.
	StaleOperationAge time.Duration

	// AuditExportBucket enables the scheduled S3 audit export when set.
	AuditExportBucket string
	AuditExportCron   string
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	exportCron := os.Getenv("AUDIT_EXPORT_CRON")
	if exportCron == "" {
		exportCron = "0 2 * * *"
	}

	var corsOrigins []string
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if o := strings.TrimSpace(origin); o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return ServerConfig{
		Environment:       env,
		ListenAddr:        listenAddr,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CORSOrigins:       corsOrigins,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		OIDCIssuer:        os.Getenv("OIDC_ISSUER"),
		OIDCClientID:      os.Getenv("OIDC_CLIENT_ID"),
		DevAPIToken:       os.Getenv("DEV_API_TOKEN"),
		RateLimitRequests: int64(getEnvInt("RATE_LIMIT_REQUESTS", 100)),
		RateLimitPeriod:   getEnvDuration("RATE_LIMIT_PERIOD", time.Minute),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute),
		StaleOperationAge: getEnvDuration("STALE_OPERATION_AGE", 15*time.Minute),
		AuditExportBucket: os.Getenv("AUDIT_EXPORT_BUCKET"),
		AuditExportCron:   exportCron,
	}
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvDuration reads a duration from an environment variable, returning the default if unset or invalid.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

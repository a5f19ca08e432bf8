// Package main is the entrypoint for the entitlement server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/api"
	"github.com/nexorasim/entitlement/internal/audit"
	"github.com/nexorasim/entitlement/internal/auth"
	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/config"
	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/entitlement"
	"github.com/nexorasim/entitlement/internal/export"
	"github.com/nexorasim/entitlement/internal/reconcile"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("version", Version).Logger()
	if os.Getenv("ENV") != string(config.EnvProduction) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("build_date", BuildDate).
		Msg("Starting entitlement server")

	// Load configuration
	cfg := config.LoadServerConfig()

	if cfg.DatabaseURL == "" {
		logger.Error().Msg("DATABASE_URL environment variable is required")
		return 1
	}

	// Connect to database and run migrations
	database, err := db.New(ctx, db.DefaultConfig(cfg.DatabaseURL), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return 1
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		return 1
	}

	// Per-ICCID lease: Redis when configured, in-process otherwise
	var lease entitlement.Lease
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
			return 1
		}
		defer redisClient.Close()
		lease = entitlement.NewRedisLease(redisClient, entitlement.DefaultLeaseTTL, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis-backed lease")
	} else {
		lease = entitlement.NewLocalLease()
		logger.Warn().Msg("REDIS_ADDR not set, using in-process lease (single instance only)")
	}

	// Token verification: OIDC when configured, static dev token otherwise
	var verifier auth.Verifier
	if cfg.OIDCIssuer != "" {
		verifier, err = auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			logger.Error().Err(err).Str("issuer", cfg.OIDCIssuer).Msg("failed to configure OIDC")
			return 1
		}
	} else {
		if cfg.Environment == config.EnvProduction {
			logger.Error().Msg("OIDC_ISSUER is required in production")
			return 1
		}
		if cfg.DevAPIToken == "" {
			logger.Error().Msg("either OIDC_ISSUER or DEV_API_TOKEN must be set")
			return 1
		}
		verifier = auth.NewStaticVerifier(cfg.DevAPIToken)
		logger.Warn().Msg("OIDC not configured, using static dev API token")
	}

	// Core wiring
	registry := carrier.NewRegistry()
	gateway := carrier.NewGateway(logger)
	recorder := audit.NewMultiRecorder(
		audit.NewDBRecorder(database, logger),
		audit.NewLogRecorder(logger),
	)
	svc := entitlement.NewService(database, registry, gateway, recorder, lease, logger)

	// Stale-operation reconciliation sweep
	sweeper := reconcile.New(database, recorder, cfg.StaleOperationAge, logger)
	if err := sweeper.Start(cfg.ReconcileInterval); err != nil {
		logger.Error().Err(err).Msg("failed to start reconciliation sweep")
		return 1
	}
	defer sweeper.Stop()

	// Scheduled audit export, when a bucket is configured
	if cfg.AuditExportBucket != "" {
		exporter, err := export.NewS3Exporter(ctx, database, cfg.AuditExportBucket,
			os.Getenv("AWS_REGION"), os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to configure audit export")
			return 1
		}
		if err := exporter.Start(cfg.AuditExportCron); err != nil {
			logger.Error().Err(err).Msg("failed to schedule audit export")
			return 1
		}
		defer exporter.Stop()
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Environment = cfg.Environment
	apiCfg.AllowedOrigins = cfg.CORSOrigins
	apiCfg.RateLimitRequests = cfg.RateLimitRequests
	apiCfg.RateLimitPeriod = cfg.RateLimitPeriod
	apiCfg.Version = Version
	apiCfg.Commit = Commit
	apiCfg.BuildDate = BuildDate

	router := api.NewRouter(apiCfg, database, svc, registry, gateway, verifier, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			return 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return 1
	}

	logger.Info().Msg("server stopped")
	return 0
}

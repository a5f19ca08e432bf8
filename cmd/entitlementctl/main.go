// Package main is the entitlementctl admin CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nexorasim/entitlement/internal/carrier"
	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/export"
)

var (
	Version = "dev"

	databaseURL string
	verbose     bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "entitlementctl",
		Short:   "Admin CLI for the entitlement server",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(carriersCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(migrateCmd())
	return root
}

func carriersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carriers",
		Short: "Inspect the carrier registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered carriers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tPLMN\tSM-DP+\t5G\tVoLTE")
			for _, c := range carrier.NewRegistry().List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%v\n",
					c.CarrierCode, c.CarrierName, c.PLMN(), c.SMDPAddress, c.Supports5G, c.SupportsVoLTE)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "health [code]",
		Short: "Probe carrier API availability",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := carrier.NewRegistry()
			gateway := carrier.NewGateway(logger())

			configs := registry.List()
			if len(args) == 1 {
				cfg, err := registry.Lookup(args[0])
				if err != nil {
					return err
				}
				configs = configs[:0]
				configs = append(configs, cfg)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			unhealthy := 0
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tENDPOINT\tHEALTHY")
			for _, cfg := range configs {
				healthy := gateway.HealthCheck(ctx, cfg)
				if !healthy {
					unhealthy++
				}
				fmt.Fprintf(w, "%s\t%s\t%v\n", cfg.CarrierCode, cfg.APIEndpoint, healthy)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d carrier(s) unhealthy", unhealthy)
			}
			return nil
		},
	})

	return cmd
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail operations",
	}

	var (
		bucket string
		date   string
		region string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export one day's audit trail to S3 as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bucket == "" {
				return fmt.Errorf("--bucket is required")
			}

			day := time.Now().UTC().AddDate(0, 0, -1)
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", date, err)
				}
				day = parsed
			}

			database, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			exporter, err := export.NewS3Exporter(cmd.Context(), database, bucket, region,
				os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), logger())
			if err != nil {
				return err
			}

			key, err := exporter.ExportDay(cmd.Context(), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported s3://%s/%s\n", bucket, key)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&bucket, "bucket", os.Getenv("AUDIT_EXPORT_BUCKET"), "S3 bucket for the export")
	exportCmd.Flags().StringVar(&date, "date", "", "UTC day to export (YYYY-MM-DD, default yesterday)")
	exportCmd.Flags().StringVar(&region, "region", os.Getenv("AWS_REGION"), "AWS region")
	cmd.AddCommand(exportCmd)

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func openDB(ctx context.Context) (*db.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	return db.New(ctx, db.DefaultConfig(databaseURL), logger())
}

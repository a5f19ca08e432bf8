// Package export writes audit logs to CSV and ships them to S3 for
// compliance retention.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nexorasim/entitlement/internal/db"
	"github.com/nexorasim/entitlement/internal/models"
)

var csvHeader = []string{
	"log_id", "timestamp", "user_id", "action",
	"resource_type", "resource_id", "status", "details", "ip_address", "user_agent",
}

// WriteCSV writes audit entries as CSV with a header row.
func WriteCSV(w io.Writer, logs []*models.AuditLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range logs {
		record := []string{
			l.LogID.String(),
			l.Timestamp.UTC().Format(time.RFC3339),
			l.UserID,
			string(l.Action),
			l.ResourceType,
			l.ResourceID,
			string(l.Status),
			l.Details,
			l.IPAddress,
			l.UserAgent,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Store is the persistence surface the exporter needs.
type Store interface {
	GetAuditLogs(ctx context.Context, filter db.AuditLogFilter) ([]*models.AuditLog, error)
}

// ObjectPutter is the S3 surface the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes a day's audit trail to one CSV object per day.
type S3Exporter struct {
	client ObjectPutter
	store  Store
	bucket string
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewS3Exporter creates an exporter using the ambient AWS credential chain.
// When accessKey is set, static credentials are used instead; that path
// serves S3-compatible stores in on-prem deployments.
func NewS3Exporter(ctx context.Context, store Store, bucket, region, accessKey, secretKey string, logger zerolog.Logger) (*S3Exporter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Exporter{
		client: s3.NewFromConfig(cfg),
		store:  store,
		bucket: bucket,
		logger: logger.With().Str("component", "export").Logger(),
	}, nil
}

// newS3ExporterWithClient is the test seam.
func newS3ExporterWithClient(client ObjectPutter, store Store, bucket string, logger zerolog.Logger) *S3Exporter {
	return &S3Exporter{client: client, store: store, bucket: bucket, logger: logger}
}

// ExportDay writes every audit entry from the given UTC day to
// audit/<date>.csv and returns the object key.
func (e *S3Exporter) ExportDay(ctx context.Context, day time.Time) (string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	logs, err := e.store.GetAuditLogs(ctx, db.AuditLogFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return "", fmt.Errorf("load audit logs: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, logs); err != nil {
		return "", err
	}

	key := fmt.Sprintf("audit/%s.csv", start.Format("2006-01-02"))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("upload audit export: %w", err)
	}

	e.logger.Info().
		Str("key", key).
		Int("entries", len(logs)).
		Msg("audit export uploaded")
	return key, nil
}

// Start schedules a daily export of the previous UTC day at the given cron
// spec and runs until Stop.
func (e *S3Exporter) Start(spec string) error {
	e.cron = cron.New()
	_, err := e.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := e.ExportDay(ctx, time.Now().UTC().AddDate(0, 0, -1)); err != nil {
			e.logger.Error().Err(err).Msg("scheduled audit export failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule audit export: %w", err)
	}
	e.cron.Start()
	return nil
}

// Stop halts the export schedule.
func (e *S3Exporter) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// Package export writes the append-only audit logs of a batch out to
// Parquet files on the configured object storage, partitioned by export
// date, for offline analysis of submission and reconciliation history.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/writer"

	storage "github.com/tigerroll/lineup/pkg/orchestration/adapter/storage"
	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/serialization"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

const moduleExport = "audit_export"

// trackingRecord is the Parquet row form of one job tracking log entry.
type trackingRecord struct {
	ID             string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	JobID          string `parquet:"name=job_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ExternalID     string `parquet:"name=external_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReportedStatus string `parquet:"name=reported_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	MappedStatus   string `parquet:"name=mapped_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	PolledAt       int64  `parquet:"name=polled_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// reconciliationRecord is the Parquet row form of one reconciliation run.
type reconciliationRecord struct {
	ID           string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	BatchID      string `parquet:"name=batch_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status       string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	JobCounts    string `parquet:"name=job_counts, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReconciledAt int64  `parquet:"name=reconciled_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// ParquetAuditExporter exports the audit trail of one batch.
type ParquetAuditExporter struct {
	repo    repository.OrchestrationRepository
	adapter storage.StorageAdapter
	cfg     config.ExportConfig
}

var _ port.AuditTrailExporter = (*ParquetAuditExporter)(nil)

func NewParquetAuditExporter(repo repository.OrchestrationRepository, adapter storage.StorageAdapter, cfg *config.Config) *ParquetAuditExporter {
	return &ParquetAuditExporter{repo: repo, adapter: adapter, cfg: cfg.Lineup.Export}
}

// ExportBatchAuditTrail writes two Parquet files for the batch: the job
// tracking history of every job and the reconciliation history. Failures of
// individual files are aggregated; a batch with empty logs exports nothing.
func (e *ParquetAuditExporter) ExportBatchAuditTrail(ctx context.Context, batchID string) error {
	if !e.cfg.Enabled {
		return nil
	}

	jobs, err := e.repo.FindJobsByBatchID(ctx, batchID)
	if err != nil {
		return exception.NewBatchError(moduleExport,
			fmt.Sprintf("failed to load jobs of batch '%s'", batchID), err, false)
	}
	var trackingRows []trackingRecord
	for _, job := range jobs {
		logs, err := e.repo.FindJobTrackingLogsByJobID(ctx, job.ID)
		if err != nil {
			return exception.NewBatchError(moduleExport,
				fmt.Sprintf("failed to load tracking logs of job '%s'", job.ID), err, false)
		}
		for _, rec := range logs {
			trackingRows = append(trackingRows, trackingRecord{
				ID:             rec.ID,
				JobID:          rec.JobID,
				ExternalID:     rec.ExternalID,
				ReportedStatus: rec.ReportedStatus,
				MappedStatus:   string(rec.MappedStatus),
				PolledAt:       rec.PolledAt.UnixMilli(),
			})
		}
	}

	reconLogs, err := e.repo.FindBatchReconciliationLogsByBatchID(ctx, batchID)
	if err != nil {
		return exception.NewBatchError(moduleExport,
			fmt.Sprintf("failed to load reconciliation logs of batch '%s'", batchID), err, false)
	}
	reconRows := make([]reconciliationRecord, 0, len(reconLogs))
	for _, rec := range reconLogs {
		counts, err := serialization.MarshalDocument(model.Document{"counts": rec.JobCounts})
		if err != nil {
			return exception.NewBatchError(moduleExport, "failed to encode job counts", err, false)
		}
		reconRows = append(reconRows, reconciliationRecord{
			ID:           rec.ID,
			BatchID:      rec.BatchID,
			Status:       string(rec.Status),
			JobCounts:    string(counts),
			ReconciledAt: rec.ReconciledAt.UnixMilli(),
		})
	}

	var multiErr *multierror.Error
	if len(trackingRows) > 0 {
		if err := writeParquet(ctx, e.adapter, e.cfg, batchID, "job_tracking", new(trackingRecord), toAny(trackingRows)); err != nil {
			multiErr = multierror.Append(multiErr, err)
		}
	}
	if len(reconRows) > 0 {
		if err := writeParquet(ctx, e.adapter, e.cfg, batchID, "reconciliation", new(reconciliationRecord), toAny(reconRows)); err != nil {
			multiErr = multierror.Append(multiErr, err)
		}
	}
	if err := multiErr.ErrorOrNil(); err != nil {
		return exception.NewBatchError(moduleExport,
			fmt.Sprintf("audit export of batch '%s' failed", batchID), err, true)
	}
	logger.Infof("Exported audit trail of batch '%s' (%d tracking rows, %d reconciliation rows).",
		batchID, len(trackingRows), len(reconRows))
	return nil
}

func toAny[T any](rows []T) []interface{} {
	out := make([]interface{}, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}

// writeParquet buffers one Parquet file in memory and uploads it under a
// Hive-style dt= partition.
func writeParquet(ctx context.Context, adapter storage.StorageAdapter, cfg config.ExportConfig, batchID, kind string, prototype interface{}, rows []interface{}) error {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, prototype, int64(len(rows)))
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer for '%s': %w", kind, err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write '%s' row: %w", kind, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize '%s' Parquet file: %w", kind, err)
	}

	now := time.Now().UTC()
	objectName := path.Join(
		cfg.Prefix,
		kind,
		"dt="+now.Format("2006-01-02"),
		fmt.Sprintf("%s_%s.parquet", batchID, now.Format("20060102150405")),
	)
	if err := adapter.Upload(ctx, cfg.Bucket, objectName, buf, "application/octet-stream"); err != nil {
		return fmt.Errorf("failed to upload '%s' Parquet file: %w", kind, err)
	}
	return nil
}

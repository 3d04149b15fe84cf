package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/gl-engine/internal/accounting/integrity"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	jobmetrics "github.com/odyssey-erp/gl-engine/internal/jobs"
)

// YearLister lists fiscal years.
type YearLister interface {
	ListYears(ctx context.Context) ([]periods.FiscalYear, error)
}

// YearScanner scans and caches one fiscal year.
type YearScanner interface {
	ScanYear(ctx context.Context, fy periods.FiscalYear) (integrity.Snapshot, error)
}

// IntegrityScanJob refreshes the cached integrity snapshot of fiscal years.
type IntegrityScanJob struct {
	Years   YearLister
	Scanner YearScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIntegrityScanJob initialises the integrity scan handler.
func NewIntegrityScanJob(years YearLister, scanner YearScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityScanJob {
	return &IntegrityScanJob{Years: years, Scanner: scanner, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Years == nil || j.Scanner == nil {
		return errors.New("integrity scan: handler not configured")
	}
	var payload IntegrityScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("integrity scan payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	tracker := j.Metrics.Track(TaskGLIntegrityScan)
	defer func() { err = tracker.End(err) }()

	years, err := j.Years.ListYears(ctx)
	if err != nil {
		return err
	}
	logger := j.logger()
	scanned := 0
	for _, fy := range years {
		if payload.FiscalYear != 0 && fy.Year != payload.FiscalYear {
			continue
		}
		if payload.FiscalYear == 0 && fy.Status == periods.StatusClosed {
			continue
		}
		snap, err := j.Scanner.ScanYear(ctx, fy)
		if err != nil {
			logger.Error("integrity scan failed", slog.Int("fiscal_year", fy.Year), slog.Any("error", err))
			return err
		}
		scanned++
		j.Metrics.AddFindings(string(integrity.SeverityHigh), snap.Summary.High)
		j.Metrics.AddFindings(string(integrity.SeverityMedium), snap.Summary.Medium)
		j.Metrics.AddFindings(string(integrity.SeverityLow), snap.Summary.Low)
		level := slog.LevelInfo
		if snap.Summary.High > 0 {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "integrity snapshot refreshed",
			slog.Int("fiscal_year", fy.Year),
			slog.String("run_id", snap.RunID),
			slog.Int("findings", snap.Summary.Total),
			slog.Int("high", snap.Summary.High))
	}
	if payload.FiscalYear != 0 && scanned == 0 {
		return fmt.Errorf("integrity scan: fiscal year %d not found: %w", payload.FiscalYear, asynq.SkipRetry)
	}
	return nil
}

func (j *IntegrityScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGLIntegrityScan))
	}
	return slog.Default().With(slog.String("job", TaskGLIntegrityScan))
}

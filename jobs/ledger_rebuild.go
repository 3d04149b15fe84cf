package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	jobmetrics "github.com/odyssey-erp/gl-engine/internal/jobs"
)

// Rebuilder detects and repairs projection drift.
type Rebuilder interface {
	Drift(ctx context.Context) ([]ledger.DriftRow, error)
	Rebuild(ctx context.Context) (ledger.RebuildResult, error)
}

// LedgerRebuildJob replays the ledger projection when it drifted.
type LedgerRebuildJob struct {
	Projector Rebuilder
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewLedgerRebuildJob initialises the rebuild handler.
func NewLedgerRebuildJob(projector Rebuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerRebuildJob {
	return &LedgerRebuildJob{Projector: projector, Logger: logger, Metrics: metrics}
}

// Handle executes the rebuild.
func (j *LedgerRebuildJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Projector == nil {
		return errors.New("ledger rebuild: handler not configured")
	}
	var payload LedgerRebuildPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("ledger rebuild payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	tracker := j.Metrics.Track(TaskGLLedgerRebuild)
	defer func() { err = tracker.End(err) }()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskGLLedgerRebuild), slog.Bool("force", payload.Force))

	drift, err := j.Projector.Drift(ctx)
	if err != nil {
		return err
	}
	if len(drift) == 0 && !payload.Force {
		logger.Info("ledger projection in sync, rebuild skipped")
		return nil
	}
	result, err := j.Projector.Rebuild(ctx)
	if err != nil {
		return err
	}
	logger.Info("ledger projection replayed",
		slog.Int("drift_accounts", len(drift)),
		slog.Int64("deleted", result.Deleted),
		slog.Int("inserted", result.Inserted))
	return nil
}

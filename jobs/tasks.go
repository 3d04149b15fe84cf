package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGLIntegrityScan scans fiscal years for ledger inconsistencies.
	TaskGLIntegrityScan = "gl:integrity_scan"
	// TaskGLLedgerRebuild replays the ledger projection from posted lines.
	TaskGLLedgerRebuild = "gl:ledger_rebuild"
)

// IntegrityScanPayload selects the fiscal year to scan. Zero scans every
// year that is not closed.
type IntegrityScanPayload struct {
	FiscalYear int `json:"fiscal_year,omitempty"`
}

// LedgerRebuildPayload forces a rebuild even when no drift is detected.
type LedgerRebuildPayload struct {
	Force bool `json:"force"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(fiscalYear int) (*asynq.Task, error) {
	data, err := json.Marshal(IntegrityScanPayload{FiscalYear: fiscalYear})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrityScan, data, asynq.Timeout(10*time.Minute)), nil
}

// NewLedgerRebuildTask constructs an Asynq task.
func NewLedgerRebuildTask(force bool) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerRebuildPayload{Force: force})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLLedgerRebuild, data, asynq.Timeout(30*time.Minute)), nil
}

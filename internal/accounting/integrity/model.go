package integrity

import (
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding codes.
const (
	CodeUnbalanced      = "unbalanced_entry"
	CodeNotPostable     = "line_on_non_postable_account"
	CodeCachedTotals    = "cached_totals_mismatch"
	CodeProjectionDrift = "projection_drift"
	CodeZeroTotal       = "zero_total_entry"
)

// Finding is one detected inconsistency.
type Finding struct {
	Code        string   `json:"code"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	EntryID     int64    `json:"entry_id,omitempty"`
	EntryNumber string   `json:"entry_number,omitempty"`
	AccountCode string   `json:"account_code,omitempty"`
	AccountID   int64    `json:"account_id,omitempty"`
}

// Snapshot is the result of one integrity run.
type Snapshot struct {
	RunID    string                  `json:"run_id"`
	RunAt    time.Time               `json:"run_at"`
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Summary  periods.FindingsSummary `json:"summary"`
	Findings []Finding               `json:"findings"`
}

func (s *Snapshot) add(f Finding) {
	s.Findings = append(s.Findings, f)
	s.Summary.Total++
	switch f.Severity {
	case SeverityHigh:
		s.Summary.High++
	case SeverityMedium:
		s.Summary.Medium++
	default:
		s.Summary.Low++
	}
}

// Audit converts the snapshot into the form consulted by period closing.
func (s Snapshot) Audit() periods.AuditSnapshot {
	return periods.AuditSnapshot{RunID: s.RunID, RunAt: s.RunAt, Summary: s.Summary}
}

package periods

import (
	"time"

	"github.com/odyssey-erp/gl-engine/internal/shared"
)

// Status enumerates fiscal year lifecycle states.
type Status string

const (
	StatusOpen    Status = shared.PeriodStatusOpen
	StatusPartial Status = shared.PeriodStatusPartial
	StatusLocked  Status = shared.PeriodStatusLocked
	StatusClosed  Status = shared.PeriodStatusClosed
)

// FiscalYear is a non-overlapping date range with a lifecycle state.
type FiscalYear struct {
	ID          int64      `json:"id"`
	Year        int        `json:"year"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Status      Status     `json:"status"`
	ClosedUntil *time.Time `json:"closed_until,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    *int64     `json:"closed_by,omitempty"`
	ReopenedAt  *time.Time `json:"reopened_at,omitempty"`
	ReopenedBy  *int64     `json:"reopened_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Contains reports whether d falls inside the year bounds.
func (fy FiscalYear) Contains(d time.Time) bool {
	return !d.Before(fy.StartDate) && !d.After(fy.EndDate)
}

// Overlaps reports whether the two ranges share at least one day.
func (fy FiscalYear) Overlaps(start, end time.Time) bool {
	return !start.After(fy.EndDate) && !end.Before(fy.StartDate)
}

// ExceptionalPeriod whitelists postings inside a closed or locked year.
type ExceptionalPeriod struct {
	ID           int64     `json:"id"`
	FiscalYearID int64     `json:"fiscal_year_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Reason       string    `json:"reason"`
	CreatedBy    *int64    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contains reports whether d falls inside the window.
func (p ExceptionalPeriod) Contains(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// FindingsSummary counts integrity findings by severity.
type FindingsSummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// AuditSnapshot is the integrity result consulted before closing.
type AuditSnapshot struct {
	RunID   string          `json:"run_id"`
	RunAt   time.Time       `json:"run_at"`
	Summary FindingsSummary `json:"summary"`
}

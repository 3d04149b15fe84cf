package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// ChartOfAccounts provides the registry used to judge posted lines.
type ChartOfAccounts interface {
	Registry(ctx context.Context) (*accounts.Registry, error)
}

// DriftSource compares the ledger projection with the journal.
type DriftSource interface {
	Drift(ctx context.Context) ([]ledger.DriftRow, error)
}

// Checker scans posted entries for ledger inconsistencies.
type Checker struct {
	repo   Repository
	coa    ChartOfAccounts
	drift  DriftSource
	cache  *SnapshotCache
	logger *slog.Logger
	now    func() time.Time
}

func NewChecker(repo Repository, coa ChartOfAccounts, drift DriftSource, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{repo: repo, coa: coa, drift: drift, logger: logger, now: time.Now}
}

// WithCache stores every closure snapshot under its fiscal year.
func (c *Checker) WithCache(cache *SnapshotCache) {
	c.cache = cache
}

// WithNow overrides the clock.
func (c *Checker) WithNow(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Run inspects posted entries dated inside the inclusive range. Projection
// drift is global and reported regardless of the range.
func (c *Checker) Run(ctx context.Context, from, to time.Time) (Snapshot, error) {
	from, to = shared.DateOnly(from), shared.DateOnly(to)
	if to.Before(from) {
		return Snapshot{}, shared.ErrInvalidDateRange
	}
	reg, err := c.coa.Registry(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	entries, err := c.repo.PostedEntries(ctx, from, to)
	if err != nil {
		return Snapshot{}, fmt.Errorf("integrity: load entries: %w", err)
	}
	snap := Snapshot{RunID: uuid.NewString(), RunAt: c.now().UTC(), From: from, To: to}
	for _, e := range entries {
		checkEntry(&snap, e, reg)
	}
	if c.drift != nil {
		rows, err := c.drift.Drift(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("integrity: projection drift: %w", err)
		}
		for _, d := range rows {
			f := Finding{
				Code:      CodeProjectionDrift,
				Severity:  SeverityMedium,
				AccountID: d.AccountID,
				Message: fmt.Sprintf("projection debit=%s credit=%s, journal debit=%s credit=%s",
					d.Projection.Debit.StringFixed(2), d.Projection.Credit.StringFixed(2),
					d.Journal.Debit.StringFixed(2), d.Journal.Credit.StringFixed(2)),
			}
			if acc, ok := reg.ByID(d.AccountID); ok {
				f.AccountCode = acc.Code
			}
			snap.add(f)
		}
	}
	c.logger.Info("integrity scan finished",
		slog.String("run_id", snap.RunID),
		slog.Int("entries", len(entries)),
		slog.Int("high", snap.Summary.High),
		slog.Int("medium", snap.Summary.Medium),
		slog.Int("low", snap.Summary.Low))
	return snap, nil
}

// ClosureSnapshot runs the checker over the closing range and caches the result.
func (c *Checker) ClosureSnapshot(ctx context.Context, fy periods.FiscalYear, from, to time.Time) (periods.AuditSnapshot, error) {
	snap, err := c.runAndStore(ctx, fy.Year, from, to)
	if err != nil {
		return periods.AuditSnapshot{}, err
	}
	return snap.Audit(), nil
}

// ScanYear inspects a whole fiscal year and caches the result.
func (c *Checker) ScanYear(ctx context.Context, fy periods.FiscalYear) (Snapshot, error) {
	return c.runAndStore(ctx, fy.Year, fy.StartDate, fy.EndDate)
}

// Latest returns the cached snapshot of a fiscal year.
func (c *Checker) Latest(ctx context.Context, fiscalYear int) (Snapshot, bool, error) {
	return c.cache.Latest(ctx, fiscalYear)
}

func (c *Checker) runAndStore(ctx context.Context, year int, from, to time.Time) (Snapshot, error) {
	snap, err := c.Run(ctx, from, to)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.cache.Store(ctx, year, snap); err != nil {
		c.logger.Warn("cache integrity snapshot", slog.Int("fiscal_year", year), slog.Any("error", err))
	}
	return snap, nil
}

func checkEntry(snap *Snapshot, e journals.Entry, reg *accounts.Registry) {
	debit, credit := e.LineTotals()
	if !shared.Balanced(debit, credit) {
		snap.add(Finding{
			Code: CodeUnbalanced, Severity: SeverityHigh, EntryID: e.ID, EntryNumber: e.Number,
			Message: fmt.Sprintf("lines debit=%s credit=%s", debit.StringFixed(2), credit.StringFixed(2)),
		})
	}
	for _, l := range e.Lines {
		acc, ok := reg.Lookup(l.AccountCode)
		if ok && acc.AllowPosting && !acc.IsControl && reg.IsLeaf(l.AccountCode) {
			continue
		}
		snap.add(Finding{
			Code: CodeNotPostable, Severity: SeverityHigh, EntryID: e.ID, EntryNumber: e.Number,
			AccountCode: l.AccountCode,
			Message:     fmt.Sprintf("line %d posted to %s", l.LineNo, l.AccountCode),
		})
	}
	if !shared.Balanced(e.TotalDebit, debit) || !shared.Balanced(e.TotalCredit, credit) {
		snap.add(Finding{
			Code: CodeCachedTotals, Severity: SeverityMedium, EntryID: e.ID, EntryNumber: e.Number,
			Message: fmt.Sprintf("header debit=%s credit=%s, lines debit=%s credit=%s",
				e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), debit.StringFixed(2), credit.StringFixed(2)),
		})
	}
	if shared.Round2(debit).IsZero() && shared.Round2(credit).IsZero() {
		snap.add(Finding{
			Code: CodeZeroTotal, Severity: SeverityLow, EntryID: e.ID, EntryNumber: e.Number,
			Message: "posted entry has zero total",
		})
	}
}

package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

type periodRepo struct{ s *Store }

func (r periodRepo) ListYears(ctx context.Context) ([]periods.FiscalYear, error) {
	var out []periods.FiscalYear
	r.s.read(func(st *state) { out = st.calendar().Years })
	return out, nil
}

func (r periodRepo) GetYear(ctx context.Context, id int64) (periods.FiscalYear, error) {
	var (
		fy periods.FiscalYear
		ok bool
	)
	r.s.read(func(st *state) { fy, ok = st.years[id] })
	if !ok {
		return periods.FiscalYear{}, shared.ErrFiscalYearNotFound
	}
	return fy, nil
}

func (r periodRepo) Calendar(ctx context.Context) (periods.Calendar, error) {
	var cal periods.Calendar
	r.s.read(func(st *state) { cal = st.calendar() })
	return cal, nil
}

func (r periodRepo) WithTx(ctx context.Context, fn func(context.Context, periods.TxRepository) error) error {
	return r.s.tx(func(st *state) error {
		return fn(ctx, periodTx{st: st, now: r.s.now})
	})
}

type periodTx struct {
	st  *state
	now func() time.Time
}

func (t periodTx) ListYears(ctx context.Context) ([]periods.FiscalYear, error) {
	return t.st.calendar().Years, nil
}

func (t periodTx) LockYear(ctx context.Context, id int64) (periods.FiscalYear, error) {
	fy, ok := t.st.years[id]
	if !ok {
		return periods.FiscalYear{}, shared.ErrFiscalYearNotFound
	}
	return fy, nil
}

func (t periodTx) InsertYear(ctx context.Context, fy *periods.FiscalYear) error {
	for _, existing := range t.st.years {
		if existing.Year == fy.Year || existing.Overlaps(fy.StartDate, fy.EndDate) {
			return fmt.Errorf("%w: %d", shared.ErrFiscalYearOverlap, existing.Year)
		}
	}
	now := t.now()
	fy.ID = t.st.nextID()
	fy.CreatedAt, fy.UpdatedAt = now, now
	t.st.years[fy.ID] = *fy
	return nil
}

func (t periodTx) UpdateYear(ctx context.Context, fy periods.FiscalYear) error {
	if _, ok := t.st.years[fy.ID]; !ok {
		return shared.ErrFiscalYearNotFound
	}
	fy.UpdatedAt = t.now()
	t.st.years[fy.ID] = fy
	return nil
}

func (t periodTx) InsertExceptional(ctx context.Context, p *periods.ExceptionalPeriod) error {
	p.ID = t.st.nextID()
	p.CreatedAt = t.now()
	t.st.exceptional[p.ID] = *p
	return nil
}

func (t periodTx) DeleteExceptional(ctx context.Context, id int64) (periods.ExceptionalPeriod, error) {
	p, ok := t.st.exceptional[id]
	if !ok {
		return periods.ExceptionalPeriod{}, shared.ErrExceptionalPeriodNotFound
	}
	delete(t.st.exceptional, id)
	return p, nil
}

func (t periodTx) RecordAudit(ctx context.Context, log platformshared.AuditLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	if log.At.IsZero() {
		log.At = t.now()
	}
	t.st.auditLogs = append(t.st.auditLogs, log)
	return nil
}

package periods

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

const (
	MsgNoFiscalYear    = "no fiscal year covers this date"
	MsgOutsideYear     = "date outside fiscal year range"
	MsgYearClosed      = "fiscal year is closed"
	msgLockedUntilTmpl = "period locked until %s"
)

// Calendar is a read-only snapshot of fiscal years and exceptional periods.
type Calendar struct {
	Years       []FiscalYear
	Exceptional []ExceptionalPeriod
}

// FiscalYearForDate returns the year containing d, most recently started first.
func (c Calendar) FiscalYearForDate(d time.Time) (FiscalYear, bool) {
	d = shared.DateOnly(d)
	var (
		found FiscalYear
		ok    bool
	)
	for _, fy := range c.Years {
		if !fy.Contains(d) {
			continue
		}
		if !ok || fy.StartDate.After(found.StartDate) {
			found, ok = fy, true
		}
	}
	return found, ok
}

// FiscalYearByNumber returns the year with the given number.
func (c Calendar) FiscalYearByNumber(year int) (FiscalYear, bool) {
	for _, fy := range c.Years {
		if fy.Year == year {
			return fy, true
		}
	}
	return FiscalYear{}, false
}

// InExceptionalPeriod reports whether any exceptional window contains d.
func (c Calendar) InExceptionalPeriod(d time.Time) bool {
	d = shared.DateOnly(d)
	for _, p := range c.Exceptional {
		if p.Contains(d) {
			return true
		}
	}
	return false
}

// IsPeriodOpenForDate answers whether postings dated d are accepted. It never
// fails; a false result carries the reason.
func (c Calendar) IsPeriodOpenForDate(d time.Time) (bool, string) {
	fy, ok := c.FiscalYearForDate(d)
	if !ok {
		return false, MsgNoFiscalYear
	}
	return c.CheckYear(fy, d)
}

// CheckYear applies the status rules of fy to d.
func (c Calendar) CheckYear(fy FiscalYear, d time.Time) (bool, string) {
	d = shared.DateOnly(d)
	if !fy.Contains(d) {
		return false, MsgOutsideYear
	}
	switch fy.Status {
	case StatusClosed, StatusLocked:
		if c.InExceptionalPeriod(d) {
			return true, ""
		}
		return false, MsgYearClosed
	case StatusPartial:
		if fy.ClosedUntil != nil && !d.After(*fy.ClosedUntil) {
			if c.InExceptionalPeriod(d) {
				return true, ""
			}
			return false, fmt.Sprintf(msgLockedUntilTmpl, fy.ClosedUntil.Format(shared.DateLayout))
		}
	}
	return true, ""
}

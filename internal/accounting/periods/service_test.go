package periods_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

type stubAuditor struct {
	high  int
	calls int
}

func (a *stubAuditor) ClosureSnapshot(ctx context.Context, fy periods.FiscalYear, from, to time.Time) (periods.AuditSnapshot, error) {
	a.calls++
	return periods.AuditSnapshot{RunID: "run-1", Summary: periods.FindingsSummary{Total: a.high, High: a.high}}, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (*memstore.Store, *periods.Service, *stubAuditor, periods.FiscalYear) {
	t.Helper()
	store := memstore.New()
	svc := periods.NewService(store.Periods(), nil)
	auditor := &stubAuditor{}
	svc.WithAuditor(auditor)
	fy, err := svc.CreateYear(context.Background(), periods.CreateYearInput{
		Year: 2025, StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31), ActorID: 1,
	})
	require.NoError(t, err)
	return store, svc, auditor, fy
}

const longReason = "restatement approved by the audit committee"

func TestCreateYearValidation(t *testing.T) {
	_, svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateYear(ctx, periods.CreateYearInput{Year: 2026, StartDate: date(2026, 12, 31), EndDate: date(2026, 1, 1)})
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)

	_, err = svc.CreateYear(ctx, periods.CreateYearInput{Year: 2026, StartDate: date(2025, 7, 1), EndDate: date(2026, 6, 30)})
	require.ErrorIs(t, err, shared.ErrFiscalYearOverlap)

	next, err := svc.CreateYear(ctx, periods.CreateYearInput{Year: 2026, StartDate: date(2026, 1, 1), EndDate: date(2026, 12, 31)})
	require.NoError(t, err)
	require.Equal(t, periods.StatusOpen, next.Status)
}

func TestCloseRequiresReasonWhenFindingsAreCritical(t *testing.T) {
	store, svc, auditor, fy := setup(t)
	ctx := context.Background()
	auditor.high = 2

	_, err := svc.Close(ctx, fy.ID, periods.CloseInput{ActorID: 3})
	require.ErrorIs(t, err, shared.ErrCriticalFindings)

	closed, err := svc.Close(ctx, fy.ID, periods.CloseInput{ActorID: 3, Reason: longReason})
	require.NoError(t, err)
	require.Equal(t, periods.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	logs := store.AuditLogs()
	require.Equal(t, "close_override", logs[len(logs)-1].Action)
	require.Equal(t, longReason, logs[len(logs)-1].Meta["reason"])

	open, reason, err := svc.IsPeriodOpenForDate(ctx, date(2025, 5, 1))
	require.NoError(t, err)
	require.False(t, open)
	require.Equal(t, periods.MsgYearClosed, reason)
}

func TestPartialCloseBlocksUpToDate(t *testing.T) {
	_, svc, _, fy := setup(t)
	ctx := context.Background()

	_, err := svc.PartialClose(ctx, fy.ID, date(2026, 2, 1), periods.CloseInput{})
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)

	partial, err := svc.PartialClose(ctx, fy.ID, date(2025, 3, 31), periods.CloseInput{ActorID: 2})
	require.NoError(t, err)
	require.Equal(t, periods.StatusPartial, partial.Status)

	open, reason, err := svc.IsPeriodOpenForDate(ctx, date(2025, 3, 31))
	require.NoError(t, err)
	require.False(t, open)
	require.Equal(t, "period locked until 2025-03-31", reason)

	open, _, err = svc.IsPeriodOpenForDate(ctx, date(2025, 4, 1))
	require.NoError(t, err)
	require.True(t, open)
}

func TestReopenRules(t *testing.T) {
	_, svc, auditor, fy := setup(t)
	ctx := context.Background()

	_, err := svc.Reopen(ctx, fy.ID, periods.CloseInput{Reason: "too short"})
	require.ErrorIs(t, err, shared.ErrReasonRequired)

	_, err = svc.Reopen(ctx, fy.ID, periods.CloseInput{Reason: longReason})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	_, err = svc.Lock(ctx, fy.ID, 4)
	require.NoError(t, err)
	_, err = svc.Lock(ctx, fy.ID, 4)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	calls := auditor.calls
	reopened, err := svc.Reopen(ctx, fy.ID, periods.CloseInput{Reason: longReason, ActorID: 4})
	require.NoError(t, err)
	require.Equal(t, periods.StatusOpen, reopened.Status)
	require.Nil(t, reopened.ClosedUntil)
	require.NotNil(t, reopened.ReopenedAt)
	require.Equal(t, calls+1, auditor.calls)
}

func TestCloseWithoutAuditorFails(t *testing.T) {
	store := memstore.New()
	svc := periods.NewService(store.Periods(), nil)
	fy, err := svc.CreateYear(context.Background(), periods.CreateYearInput{Year: 2025, StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)})
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), fy.ID, periods.CloseInput{})
	require.Error(t, err)
}

func TestExceptionalPeriods(t *testing.T) {
	_, svc, _, fy := setup(t)
	ctx := context.Background()
	_, err := svc.Close(ctx, fy.ID, periods.CloseInput{})
	require.NoError(t, err)

	_, err = svc.AddExceptionalPeriod(ctx, fy.ID, periods.ExceptionalInput{StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 1), Reason: "x"})
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)
	_, err = svc.AddExceptionalPeriod(ctx, fy.ID, periods.ExceptionalInput{StartDate: date(2025, 12, 30), EndDate: date(2026, 1, 2), Reason: "x"})
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)

	p, err := svc.AddExceptionalPeriod(ctx, fy.ID, periods.ExceptionalInput{StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 30), Reason: "late invoices"})
	require.NoError(t, err)
	open, _, err := svc.IsPeriodOpenForDate(ctx, date(2025, 6, 15))
	require.NoError(t, err)
	require.True(t, open)

	require.NoError(t, svc.RemoveExceptionalPeriod(ctx, p.ID, 1))
	open, _, err = svc.IsPeriodOpenForDate(ctx, date(2025, 6, 15))
	require.NoError(t, err)
	require.False(t, open)

	err = svc.RemoveExceptionalPeriod(ctx, p.ID, 1)
	require.ErrorIs(t, err, shared.ErrExceptionalPeriodNotFound)
}

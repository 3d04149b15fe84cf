package integrity_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/integrity"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

var (
	yearStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd   = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	clock     = func() time.Time { return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC) }
)

type fixture struct {
	store   *memstore.Store
	checker *integrity.Checker
	entry   journals.Entry
}

func newFixture(t *testing.T, withDrift bool) fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New().WithNow(clock)
	require.NoError(t, store.Seed(ctx, nil, 2025))
	entry, err := journals.NewService(store.Journals(), nil).Create(ctx, journals.CreateInput{
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines: []journals.LineInput{
			{AccountCode: "1112", Debit: decimal.RequireFromString("115")},
			{AccountCode: "4111", Credit: decimal.RequireFromString("100")},
			{AccountCode: "2141", Credit: decimal.RequireFromString("15")},
		},
	})
	require.NoError(t, err)

	var drift integrity.DriftSource
	if withDrift {
		drift = ledger.NewProjector(store.Ledger(), nil, nil)
	}
	checker := integrity.NewChecker(store.Integrity(), accounts.NewService(store.Accounts(), nil), drift, nil)
	checker.WithNow(clock)
	return fixture{store: store, checker: checker, entry: entry}
}

func codes(snap integrity.Snapshot) []string {
	out := make([]string, 0, len(snap.Findings))
	for _, f := range snap.Findings {
		out = append(out, f.Code)
	}
	return out
}

func TestCleanLedgerHasNoFindings(t *testing.T) {
	f := newFixture(t, true)
	snap, err := f.checker.Run(context.Background(), yearStart, yearEnd)
	require.NoError(t, err)
	require.NotEmpty(t, snap.RunID)
	require.Equal(t, clock(), snap.RunAt)
	require.Zero(t, snap.Summary.Total)
}

func TestUnbalancedLinesAreHighAndDrift(t *testing.T) {
	f := newFixture(t, true)
	require.True(t, f.store.RewriteEntry(f.entry.ID, func(e *journals.Entry) {
		e.Lines[2].Credit = decimal.RequireFromString("10")
	}))

	snap, err := f.checker.Run(context.Background(), yearStart, yearEnd)
	require.NoError(t, err)
	require.Equal(t, periods.FindingsSummary{Total: 3, High: 1, Medium: 2}, snap.Summary)
	require.ElementsMatch(t, []string{integrity.CodeUnbalanced, integrity.CodeCachedTotals, integrity.CodeProjectionDrift}, codes(snap))
	for _, finding := range snap.Findings {
		if finding.Code == integrity.CodeProjectionDrift {
			require.Equal(t, "2141", finding.AccountCode)
		}
	}
}

func TestParentAccountLineIsHigh(t *testing.T) {
	f := newFixture(t, false)
	f.store.RewriteEntry(f.entry.ID, func(e *journals.Entry) { e.Lines[0].AccountCode = "111" })

	snap, err := f.checker.Run(context.Background(), yearStart, yearEnd)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Summary.High)
	require.Equal(t, integrity.CodeNotPostable, snap.Findings[0].Code)
	require.Equal(t, "111", snap.Findings[0].AccountCode)
}

func TestZeroTotalIsLow(t *testing.T) {
	f := newFixture(t, false)
	f.store.RewriteEntry(f.entry.ID, func(e *journals.Entry) {
		for i := range e.Lines {
			e.Lines[i].Debit, e.Lines[i].Credit = decimal.Zero, decimal.Zero
		}
		e.TotalDebit, e.TotalCredit = decimal.Zero, decimal.Zero
	})

	snap, err := f.checker.Run(context.Background(), yearStart, yearEnd)
	require.NoError(t, err)
	require.Equal(t, periods.FindingsSummary{Total: 1, Low: 1}, snap.Summary)
}

func TestRangeExcludesOtherDates(t *testing.T) {
	f := newFixture(t, false)
	f.store.RewriteEntry(f.entry.ID, func(e *journals.Entry) { e.Lines[0].AccountCode = "111" })

	snap, err := f.checker.Run(context.Background(), yearStart, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Zero(t, snap.Summary.Total)

	_, err = f.checker.Run(context.Background(), yearEnd, yearStart)
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)
}

func TestClosureSnapshotIsCachedAndBlocksClose(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, true)
	f.checker.WithCache(integrity.NewSnapshotCache(client, time.Hour))
	f.store.RewriteEntry(f.entry.ID, func(e *journals.Entry) { e.Lines[0].AccountCode = "111" })

	ctx := context.Background()
	cal := periods.NewService(f.store.Periods(), nil)
	cal.WithAuditor(f.checker)
	years, err := cal.ListYears(ctx)
	require.NoError(t, err)
	require.Len(t, years, 1)

	_, err = cal.Close(ctx, years[0].ID, periods.CloseInput{ActorID: 1})
	require.ErrorIs(t, err, shared.ErrCriticalFindings)

	cached, ok, err := f.checker.Latest(ctx, 2025)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, cached.Summary.High)
	require.True(t, mr.Exists("gl:integrity:fy:2025:snapshot"))

	_, ok, err = f.checker.Latest(ctx, 2024)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *integrity.SnapshotCache
	require.NoError(t, cache.Store(context.Background(), 2025, integrity.Snapshot{}))
	_, ok, err := cache.Latest(context.Background(), 2025)
	require.NoError(t, err)
	require.False(t, ok)
}

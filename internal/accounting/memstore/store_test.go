package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestSeedCreatesTreeAndYears(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Seed(ctx, nil, 2025))

	list, err := store.Accounts().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(accounts.CanonicalTree().Nodes()))

	cal, err := store.Periods().Calendar(ctx)
	require.NoError(t, err)
	fy, ok := cal.FiscalYearForDate(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, 2025, fy.Year)
	require.Equal(t, periods.StatusOpen, fy.Status)
	require.Len(t, store.AuditLogs(), 1)
}

func TestFailedTransactionRestoresState(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Seed(ctx, nil, 2025))
	before, err := store.Periods().ListYears(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Periods().WithTx(ctx, func(ctx context.Context, tx periods.TxRepository) error {
		fy, err := tx.LockYear(ctx, before[0].ID)
		require.NoError(t, err)
		fy.Status = periods.StatusLocked
		require.NoError(t, tx.UpdateYear(ctx, fy))
		_, err = tx.DeleteExceptional(ctx, 999)
		require.ErrorIs(t, err, shared.ErrExceptionalPeriodNotFound)
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := store.Periods().GetYear(ctx, before[0].ID)
	require.NoError(t, err)
	require.Equal(t, periods.StatusOpen, after.Status)
}

func TestInsertYearRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Seed(ctx, nil, 2025))
	err := store.Periods().WithTx(ctx, func(ctx context.Context, tx periods.TxRepository) error {
		return tx.InsertYear(ctx, &periods.FiscalYear{
			Year:      2026,
			StartDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
		})
	})
	require.ErrorIs(t, err, shared.ErrFiscalYearOverlap)
}

func TestSetActiveUnknownAccount(t *testing.T) {
	err := New().Accounts().SetActive(context.Background(), "9999", false)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

// cancelAwareRepo fails when the query context is already cancelled.
type cancelAwareRepo struct {
	Repository
	calls int
}

func (r *cancelAwareRepo) TrialBalance(ctx context.Context, asOf time.Time) ([]TrialBalanceRow, error) {
	r.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []TrialBalanceRow{{AccountID: 1, Code: "1112", Debit: decimal.NewFromInt(10)}}, nil
}

func (r *cancelAwareRepo) PeriodActivity(ctx context.Context, start, end time.Time) ([]TrialBalanceRow, error) {
	return r.TrialBalance(ctx, end)
}

func TestSharedQueriesIgnoreCallerCancellation(t *testing.T) {
	repo := &cancelAwareRepo{}
	svc := NewService(repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	rows, err := svc.TrialBalance(ctx, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = svc.PeriodActivity(ctx, day.AddDate(0, 0, -7), day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, repo.calls)
}

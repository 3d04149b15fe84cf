package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

func dayOf(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

func seededService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Seed(ctx, nil, 2025))
	j := journals.NewService(store.Journals(), nil)
	post := func(date time.Time, lines ...journals.LineInput) {
		_, err := j.Create(ctx, journals.CreateInput{Date: date, Description: "test", Lines: lines})
		require.NoError(t, err)
	}
	post(dayOf(1),
		journals.LineInput{AccountCode: "1121", Debit: dec("500")},
		journals.LineInput{AccountCode: "3210", Credit: dec("500")})
	post(dayOf(15),
		journals.LineInput{AccountCode: "1141", Debit: dec("115")},
		journals.LineInput{AccountCode: "4111", Credit: dec("100")},
		journals.LineInput{AccountCode: "2141", Credit: dec("15")})
	post(dayOf(20),
		journals.LineInput{AccountCode: "5110", Debit: dec("40")},
		journals.LineInput{AccountCode: "1170", Debit: dec("6")},
		journals.LineInput{AccountCode: "2111", Credit: dec("46")})
	return NewService(ledger.NewService(store.Ledger()), nil)
}

func TestServiceTrialBalanceSplitsOpening(t *testing.T) {
	svc := seededService(t)
	tb, err := svc.TrialBalance(context.Background(), dayOf(10), dayOf(30))
	require.NoError(t, err)
	require.True(t, tb.Balanced())
	require.True(t, tb.TotalDebit.Equal(dec("161")))
	require.True(t, tb.TotalOpening.IsZero())

	var bank TrialBalanceAccount
	for _, g := range tb.Groups {
		for _, a := range g.Accounts {
			if a.Code == "1121" {
				bank = a
			}
		}
	}
	require.True(t, bank.Opening.Equal(dec("500")))
	require.True(t, bank.Debit.IsZero())

	_, err = svc.TrialBalance(context.Background(), dayOf(30), dayOf(10))
	require.ErrorIs(t, err, shared.ErrInvalidDateRange)
}

func TestServiceStatements(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	pl, err := svc.ProfitAndLoss(ctx, dayOf(1), dayOf(30))
	require.NoError(t, err)
	require.True(t, pl.NetIncome.Equal(dec("60")))

	bs, err := svc.BalanceSheet(ctx, dayOf(30))
	require.NoError(t, err)
	require.True(t, bs.Balanced())
	require.True(t, bs.Assets.Total.Equal(dec("621")))

	vat, err := svc.VAT(ctx, dayOf(1), dayOf(30))
	require.NoError(t, err)
	require.True(t, vat.Output.Equal(dec("15")))
	require.True(t, vat.Input.Equal(dec("6")))
	require.True(t, vat.Payable())
}

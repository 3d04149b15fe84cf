package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// Service is the read path for balances. Queries re-aggregate posted lines and
// never write.
type Service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AccountDebitCredit sums the posted lines of an account dated on or before asOf.
func (s *Service) AccountDebitCredit(ctx context.Context, accountID int64, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	t, err := s.repo.DebitCredit(ctx, accountID, shared.DateOnly(asOf))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return t.Debit, t.Credit, nil
}

// AccountBalanceByCode returns the signed balance and type of the account.
func (s *Service) AccountBalanceByCode(ctx context.Context, code string, asOf time.Time) (decimal.Decimal, accounts.AccountType, error) {
	acc, err := s.repo.AccountByCode(ctx, code)
	if err != nil {
		return decimal.Zero, "", err
	}
	debit, credit, err := s.AccountDebitCredit(ctx, acc.ID, asOf)
	if err != nil {
		return decimal.Zero, "", err
	}
	return SignedBalance(acc.Type, debit, credit), acc.Type, nil
}

// SumByCodesAndRange aggregates several accounts over an inclusive date range.
func (s *Service) SumByCodesAndRange(ctx context.Context, codes []string, start, end time.Time, creditMinusDebit bool) (decimal.Decimal, error) {
	if len(codes) == 0 {
		return decimal.Zero, nil
	}
	start, end = shared.DateOnly(start), shared.DateOnly(end)
	if end.Before(start) {
		return decimal.Zero, shared.ErrInvalidDateRange
	}
	t, err := s.repo.SumByCodes(ctx, codes, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	if creditMinusDebit {
		return t.Credit.Sub(t.Debit), nil
	}
	return t.Debit.Sub(t.Credit), nil
}

// TrialBalance returns one row per account as of asOf. Concurrent identical
// calls share one query.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) ([]TrialBalanceRow, error) {
	asOf = shared.DateOnly(asOf)
	key := "tb:" + asOf.Format(shared.DateLayout)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.repo.TrialBalance(context.WithoutCancel(ctx), asOf)
	})
	if err != nil {
		return nil, err
	}
	rows := v.([]TrialBalanceRow)
	out := make([]TrialBalanceRow, len(rows))
	copy(out, rows)
	return out, nil
}

// PeriodActivity returns per-account movements inside the inclusive range.
func (s *Service) PeriodActivity(ctx context.Context, start, end time.Time) ([]TrialBalanceRow, error) {
	start, end = shared.DateOnly(start), shared.DateOnly(end)
	if end.Before(start) {
		return nil, shared.ErrInvalidDateRange
	}
	key := fmt.Sprintf("pa:%s:%s", start.Format(shared.DateLayout), end.Format(shared.DateLayout))
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.repo.PeriodActivity(context.WithoutCancel(ctx), start, end)
	})
	if err != nil {
		return nil, err
	}
	rows := v.([]TrialBalanceRow)
	out := make([]TrialBalanceRow, len(rows))
	copy(out, rows)
	return out, nil
}

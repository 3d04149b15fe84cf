package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// LedgerReader is the subset of the ledger query service used by reports.
type LedgerReader interface {
	TrialBalance(ctx context.Context, asOf time.Time) ([]ledger.TrialBalanceRow, error)
	PeriodActivity(ctx context.Context, start, end time.Time) ([]ledger.TrialBalanceRow, error)
	SumByCodesAndRange(ctx context.Context, codes []string, start, end time.Time, creditMinusDebit bool) (decimal.Decimal, error)
}

// Service assembles financial statements from ledger queries.
type Service struct {
	ledger LedgerReader
	roles  map[accounts.Role]string
}

// NewService constructs the report service. A nil roles map uses the defaults.
func NewService(l LedgerReader, roles map[accounts.Role]string) *Service {
	if roles == nil {
		roles = accounts.DefaultRoles
	}
	return &Service{ledger: l, roles: roles}
}

// TrialBalance returns opening balances at the day before from plus the
// movements of the inclusive range.
func (s *Service) TrialBalance(ctx context.Context, from, to time.Time) (TrialBalance, error) {
	from, to = shared.DateOnly(from), shared.DateOnly(to)
	if to.Before(from) {
		return TrialBalance{}, shared.ErrInvalidDateRange
	}
	var opening, activity []ledger.TrialBalanceRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.ledger.TrialBalance(gctx, from.AddDate(0, 0, -1))
		opening = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ledger.PeriodActivity(gctx, from, to)
		activity = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return TrialBalance{}, fmt.Errorf("trial balance: %w", err)
	}
	return BuildTrialBalance(merge(opening, activity)), nil
}

// ProfitAndLoss reports income statement activity inside the range.
func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time) (ProfitAndLoss, error) {
	rows, err := s.ledger.PeriodActivity(ctx, from, to)
	if err != nil {
		return ProfitAndLoss{}, fmt.Errorf("profit and loss: %w", err)
	}
	return BuildProfitAndLoss(balances(rows)), nil
}

// BalanceSheet reports closing balances as of asOf.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	rows, err := s.ledger.TrialBalance(ctx, asOf)
	if err != nil {
		return BalanceSheet{}, fmt.Errorf("balance sheet: %w", err)
	}
	return BuildBalanceSheet(balances(rows)), nil
}

// VAT nets output against input tax booked inside the range.
func (s *Service) VAT(ctx context.Context, from, to time.Time) (VATReturn, error) {
	from, to = shared.DateOnly(from), shared.DateOnly(to)
	outputCodes := accounts.CodesFor(s.roles, accounts.RoleVATOutput)
	inputCodes := accounts.CodesFor(s.roles, accounts.RoleVATInput)
	var output, input decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.ledger.SumByCodesAndRange(gctx, outputCodes, from, to, true)
		output = v
		return err
	})
	g.Go(func() error {
		v, err := s.ledger.SumByCodesAndRange(gctx, inputCodes, from, to, false)
		input = v
		return err
	})
	if err := g.Wait(); err != nil {
		return VATReturn{}, fmt.Errorf("vat return: %w", err)
	}
	return BuildVATReturn(from, to, output, input), nil
}

// balances maps ledger rows onto movements without an opening balance.
func balances(rows []ledger.TrialBalanceRow) []AccountBalance {
	out := make([]AccountBalance, 0, len(rows))
	for _, r := range rows {
		out = append(out, AccountBalance{Code: r.Code, Name: r.Name, Type: r.Type, Debit: r.Debit, Credit: r.Credit})
	}
	return out
}

// merge keys both row sets by account. The net of opening becomes the
// opening balance and activity supplies the movements.
func merge(opening, activity []ledger.TrialBalanceRow) []AccountBalance {
	byID := make(map[int64]*AccountBalance)
	order := make([]int64, 0, len(opening)+len(activity))
	get := func(r ledger.TrialBalanceRow) *AccountBalance {
		if b, ok := byID[r.AccountID]; ok {
			return b
		}
		b := &AccountBalance{Code: r.Code, Name: r.Name, Type: r.Type}
		byID[r.AccountID] = b
		order = append(order, r.AccountID)
		return b
	}
	for _, r := range opening {
		get(r).Opening = r.Debit.Sub(r.Credit)
	}
	for _, r := range activity {
		b := get(r)
		b.Debit, b.Credit = r.Debit, r.Credit
	}
	out := make([]AccountBalance, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

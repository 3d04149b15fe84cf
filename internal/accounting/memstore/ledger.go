package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) DebitCredit(ctx context.Context, accountID int64, asOf time.Time) (ledger.Totals, error) {
	var t ledger.Totals
	r.s.read(func(st *state) {
		st.eachPosted(func(_ journals.Entry, l journals.Line) {
			if l.AccountID == accountID && !l.LineDate.After(asOf) {
				t.Debit = t.Debit.Add(l.Debit)
				t.Credit = t.Credit.Add(l.Credit)
			}
		})
	})
	return t, nil
}

func (r ledgerRepo) AccountByCode(ctx context.Context, code string) (accounts.Account, error) {
	var (
		a  accounts.Account
		ok bool
	)
	r.s.read(func(st *state) { a, ok = st.accounts[code] })
	if !ok {
		return accounts.Account{}, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
	}
	return a, nil
}

func (r ledgerRepo) SumByCodes(ctx context.Context, codes []string, start, end time.Time) (ledger.Totals, error) {
	var t ledger.Totals
	r.s.read(func(st *state) {
		st.eachPosted(func(_ journals.Entry, l journals.Line) {
			if slices.Contains(codes, l.AccountCode) && shared.Within(l.LineDate, start, end) {
				t.Debit = t.Debit.Add(l.Debit)
				t.Credit = t.Credit.Add(l.Credit)
			}
		})
	})
	return t, nil
}

func (r ledgerRepo) TrialBalance(ctx context.Context, asOf time.Time) ([]ledger.TrialBalanceRow, error) {
	return r.accountTotals(func(d time.Time) bool { return !d.After(asOf) }), nil
}

func (r ledgerRepo) PeriodActivity(ctx context.Context, start, end time.Time) ([]ledger.TrialBalanceRow, error) {
	return r.accountTotals(func(d time.Time) bool { return shared.Within(d, start, end) }), nil
}

func (r ledgerRepo) accountTotals(include func(time.Time) bool) []ledger.TrialBalanceRow {
	var out []ledger.TrialBalanceRow
	r.s.read(func(st *state) {
		totals := make(map[int64]ledger.Totals)
		st.eachPosted(func(_ journals.Entry, l journals.Line) {
			if !include(l.LineDate) {
				return
			}
			t := totals[l.AccountID]
			t.Debit = t.Debit.Add(l.Debit)
			t.Credit = t.Credit.Add(l.Credit)
			totals[l.AccountID] = t
		})
		for _, a := range st.accountList() {
			t := totals[a.ID]
			out = append(out, ledger.TrialBalanceRow{
				AccountID: a.ID,
				Code:      a.Code,
				Name:      a.Name,
				Type:      a.Type,
				Debit:     t.Debit,
				Credit:    t.Credit,
			})
		}
	})
	return out
}

func (r ledgerRepo) ProjectionTotals(ctx context.Context) (map[int64]ledger.Totals, error) {
	out := make(map[int64]ledger.Totals)
	r.s.read(func(st *state) {
		for _, row := range st.ledger {
			out[row.AccountID] = addTotals(out[row.AccountID], row.Debit, row.Credit)
		}
	})
	return out, nil
}

func (r ledgerRepo) JournalTotals(ctx context.Context) (map[int64]ledger.Totals, error) {
	out := make(map[int64]ledger.Totals)
	r.s.read(func(st *state) {
		st.eachPosted(func(_ journals.Entry, l journals.Line) {
			out[l.AccountID] = addTotals(out[l.AccountID], l.Debit, l.Credit)
		})
	})
	return out, nil
}

func (r ledgerRepo) WithTx(ctx context.Context, fn func(context.Context, ledger.ProjectionTx) error) error {
	return r.s.tx(func(st *state) error {
		return fn(ctx, projectionTx{s: r.s, st: st})
	})
}

type projectionTx struct {
	s  *Store
	st *state
}

func (p projectionTx) ClearProjection(ctx context.Context) (int64, error) {
	n := int64(len(p.st.ledger))
	p.st.ledger = nil
	return n, nil
}

func (p projectionTx) PostedLines(ctx context.Context) ([]ledger.PostedLine, error) {
	var out []ledger.PostedLine
	p.st.eachPosted(func(e journals.Entry, l journals.Line) {
		out = append(out, ledger.PostedLine{
			JournalID:   e.ID,
			EntryNumber: e.Number,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			LineDate:    l.LineDate,
		})
	})
	return out, nil
}

func (p projectionTx) InsertLegacyRows(ctx context.Context, rows []ledger.LegacyRow) error {
	if p.s.syncFail != nil {
		return p.s.syncFail
	}
	p.st.ledger = append(p.st.ledger, rows...)
	return nil
}

// eachPosted visits posted lines ordered by entry id and line number.
func (st *state) eachPosted(fn func(journals.Entry, journals.Line)) {
	for _, e := range st.sortedEntries() {
		if e.Status != journals.StatusPosted {
			continue
		}
		for _, l := range e.Lines {
			fn(e, l)
		}
	}
}

func addTotals(t ledger.Totals, debit, credit decimal.Decimal) ledger.Totals {
	t.Debit = t.Debit.Add(debit)
	t.Credit = t.Credit.Add(credit)
	return t
}

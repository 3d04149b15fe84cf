package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
)

// PostedLine is a journal line read under a posted entry.
type PostedLine struct {
	JournalID   int64
	EntryNumber string
	LineNo      int
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	LineDate    time.Time
}

// LegacyRow is one row of the flattened ledger_entries projection.
type LegacyRow struct {
	Date        time.Time
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// LegacyDescriptionPrefix is the description prefix shared by every projected
// row of an entry.
func LegacyDescriptionPrefix(entryNumber string) string {
	return fmt.Sprintf("JE %s L", entryNumber)
}

// LegacyRows maps posted lines onto projection rows.
func LegacyRows(lines []PostedLine) []LegacyRow {
	rows := make([]LegacyRow, 0, len(lines))
	for _, l := range lines {
		desc := strings.TrimSpace(fmt.Sprintf("%s%d %s", LegacyDescriptionPrefix(l.EntryNumber), l.LineNo, l.Description))
		rows = append(rows, LegacyRow{
			Date:        l.LineDate,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: desc,
		})
	}
	return rows
}

// Totals is the debit and credit sum of one account.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalanceRow is one account of a trial balance, zero activity included.
type TrialBalanceRow struct {
	AccountID int64                `json:"account_id"`
	Code      string               `json:"code"`
	Name      string               `json:"name"`
	Type      accounts.AccountType `json:"type"`
	Debit     decimal.Decimal      `json:"debit"`
	Credit    decimal.Decimal      `json:"credit"`
}

// Balance applies the account's sign convention.
func (r TrialBalanceRow) Balance() decimal.Decimal {
	return SignedBalance(r.Type, r.Debit, r.Credit)
}

// SignedBalance is credit minus debit for credit-normal types, else debit minus credit.
func SignedBalance(t accounts.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if t.CreditNormal() {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// DriftRow reports an account whose projection disagrees with the journal.
type DriftRow struct {
	AccountID  int64  `json:"account_id"`
	Projection Totals `json:"projection"`
	Journal    Totals `json:"journal"`
}

// RebuildResult summarises a projection replay.
type RebuildResult struct {
	Deleted  int64 `json:"deleted"`
	Inserted int   `json:"inserted"`
}

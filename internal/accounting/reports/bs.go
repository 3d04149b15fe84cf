package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// CurrentEarningsCode labels the unclosed result line in equity.
const CurrentEarningsCode = "CURRENT"

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection contains the accounts and totals for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

func (s *BalanceSheetSection) add(row BalanceSheetAccount) {
	s.Accounts = append(s.Accounts, row)
	s.Total = s.Total.Add(row.Balance)
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
}

// Balanced reports whether assets equal liabilities plus equity.
func (bs BalanceSheet) Balanced() bool {
	return shared.Balanced(bs.Assets.Total, bs.TotalLiabilitiesAndEquity)
}

// BuildBalanceSheet classifies closing balances. Assets are debit-positive,
// liabilities and equity credit-positive. Income statement accounts are
// folded into a current earnings line so the sheet balances before closing.
// Tax accounts follow the class of their code.
func BuildBalanceSheet(accts []AccountBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}
	earnings := decimal.Zero

	for _, acc := range accts {
		closing := acc.Closing()
		if closing.IsZero() {
			continue
		}
		row := BalanceSheetAccount{Code: acc.Code, Name: acc.Name, Balance: closing}
		switch classOf(acc) {
		case accounts.AccountTypeAsset:
			assets.add(row)
		case accounts.AccountTypeLiability:
			row.Balance = closing.Neg()
			liabilities.add(row)
		case accounts.AccountTypeEquity:
			row.Balance = closing.Neg()
			equity.add(row)
		default:
			earnings = earnings.Sub(closing)
		}
	}
	if !earnings.IsZero() {
		equity.add(BalanceSheetAccount{Code: CurrentEarningsCode, Name: "Current period earnings", Balance: earnings})
	}

	for _, s := range []*BalanceSheetSection{&assets, &liabilities, &equity} {
		sort.SliceStable(s.Accounts, func(i, j int) bool { return s.Accounts[i].Code < s.Accounts[j].Code })
	}

	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		TotalLiabilitiesAndEquity: liabilities.Total.Add(equity.Total),
	}
}

func classOf(acc AccountBalance) accounts.AccountType {
	if acc.Type != accounts.AccountTypeTax {
		return acc.Type
	}
	switch {
	case strings.HasPrefix(acc.Code, "1"):
		return accounts.AccountTypeAsset
	case strings.HasPrefix(acc.Code, "2"):
		return accounts.AccountTypeLiability
	}
	return acc.Type
}

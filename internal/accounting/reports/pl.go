package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
)

// ProfitAndLossAccount represents a revenue or expense account summary.
type ProfitAndLossAccount struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string                 `json:"label"`
	Accounts []ProfitAndLossAccount `json:"accounts"`
	Total    decimal.Decimal        `json:"total"`
}

func (s *ProfitAndLossSection) add(row ProfitAndLossAccount) {
	s.Accounts = append(s.Accounts, row)
	s.Total = s.Total.Add(row.Amount)
}

func (s *ProfitAndLossSection) sort() {
	sort.Slice(s.Accounts, func(i, j int) bool { return s.Accounts[i].Code < s.Accounts[j].Code })
}

// ProfitAndLoss contains the structured output for the report.
type ProfitAndLoss struct {
	Revenue     ProfitAndLossSection `json:"revenue"`
	CostOfSales ProfitAndLossSection `json:"cost_of_sales"`
	Expense     ProfitAndLossSection `json:"expense"`
	GrossProfit decimal.Decimal      `json:"gross_profit"`
	NetIncome   decimal.Decimal      `json:"net_income"`
}

// BuildProfitAndLoss aggregates period activity into revenue, cost of sales
// and expense sections. Revenue is shown credit-positive.
func BuildProfitAndLoss(accts []AccountBalance) ProfitAndLoss {
	revenue := ProfitAndLossSection{Label: "Revenue"}
	cogs := ProfitAndLossSection{Label: "Cost of Sales"}
	expense := ProfitAndLossSection{Label: "Expense"}

	for _, acc := range accts {
		if acc.Debit.IsZero() && acc.Credit.IsZero() {
			continue
		}
		amount := acc.Debit.Sub(acc.Credit)
		row := ProfitAndLossAccount{Code: acc.Code, Name: acc.Name, Amount: amount}
		switch acc.Type {
		case accounts.AccountTypeRevenue, accounts.AccountTypeOtherIncome:
			row.Amount = amount.Neg()
			revenue.add(row)
		case accounts.AccountTypeCOGS:
			cogs.add(row)
		case accounts.AccountTypeExpense, accounts.AccountTypeOtherExpense:
			expense.add(row)
		}
	}
	revenue.sort()
	cogs.sort()
	expense.sort()

	gross := revenue.Total.Sub(cogs.Total)
	return ProfitAndLoss{
		Revenue:     revenue,
		CostOfSales: cogs,
		Expense:     expense,
		GrossProfit: gross,
		NetIncome:   gross.Sub(expense.Total),
	}
}

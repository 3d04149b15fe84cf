package reports

import "time"

// TrialBalanceViewModel is the trial balance response with its filters.
type TrialBalanceViewModel struct {
	PeriodLabel string       `json:"period_label"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	GeneratedAt time.Time    `json:"generated_at"`
	Balanced    bool         `json:"balanced"`
	Report      TrialBalance `json:"report"`
}

// ProfitAndLossViewModel is the profit & loss response.
type ProfitAndLossViewModel struct {
	PeriodLabel string        `json:"period_label"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	GeneratedAt time.Time     `json:"generated_at"`
	Report      ProfitAndLoss `json:"report"`
}

// BalanceSheetViewModel is the balance sheet response.
type BalanceSheetViewModel struct {
	PeriodLabel string       `json:"period_label"`
	AsOf        string       `json:"as_of"`
	GeneratedAt time.Time    `json:"generated_at"`
	Balanced    bool         `json:"balanced"`
	Report      BalanceSheet `json:"report"`
}

// VATViewModel is the VAT return response.
type VATViewModel struct {
	PeriodLabel string    `json:"period_label"`
	GeneratedAt time.Time `json:"generated_at"`
	Payable     bool      `json:"payable"`
	Report      VATReturn `json:"report"`
}

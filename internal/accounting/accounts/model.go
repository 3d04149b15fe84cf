package accounts

import "time"

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset        AccountType = "ASSET"
	AccountTypeLiability    AccountType = "LIABILITY"
	AccountTypeEquity       AccountType = "EQUITY"
	AccountTypeRevenue      AccountType = "REVENUE"
	AccountTypeExpense      AccountType = "EXPENSE"
	AccountTypeCOGS         AccountType = "COGS"
	AccountTypeOtherIncome  AccountType = "OTHER_INCOME"
	AccountTypeOtherExpense AccountType = "OTHER_EXPENSE"
	AccountTypeTax          AccountType = "TAX"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue,
		AccountTypeExpense, AccountTypeCOGS, AccountTypeOtherIncome, AccountTypeOtherExpense, AccountTypeTax:
		return true
	}
	return false
}

// CreditNormal reports whether balances are read as credit minus debit.
func (t AccountType) CreditNormal() bool {
	return t == AccountTypeLiability || t == AccountTypeEquity
}

// Account models a chart of accounts node.
type Account struct {
	ID           int64       `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         AccountType `json:"type"`
	ParentCode   string      `json:"parent_code,omitempty"`
	AllowPosting bool        `json:"allow_posting"`
	IsControl    bool        `json:"is_control"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Postable reports whether journal lines may target the account directly.
func (a Account) Postable() bool {
	return a.AllowPosting && !a.IsControl && a.IsActive
}

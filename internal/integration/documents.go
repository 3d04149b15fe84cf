package integration

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
)

var upper = cases.Upper(language.Und)

// PaymentMethod is the tender recorded on a document.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodBank       PaymentMethod = "BANK"
	MethodCard       PaymentMethod = "CARD"
	MethodVisa       PaymentMethod = "VISA"
	MethodMastercard PaymentMethod = "MASTERCARD"
	MethodMada       PaymentMethod = "MADA"
	MethodTransfer   PaymentMethod = "TRANSFER"
	MethodCredit     PaymentMethod = "CREDIT"
)

// ParsePaymentMethod folds case and surrounding space. Empty input means cash.
func ParsePaymentMethod(s string) PaymentMethod {
	s = upper.String(strings.TrimSpace(s))
	if s == "" {
		return MethodCash
	}
	return PaymentMethod(strings.ReplaceAll(s, " ", "_"))
}

// IsCredit reports an on-account sale or purchase.
func (m PaymentMethod) IsCredit() bool {
	return ParsePaymentMethod(string(m)) == MethodCredit
}

// UsesBank reports whether the tender settles through the bank account.
func (m PaymentMethod) UsesBank() bool {
	switch ParsePaymentMethod(string(m)) {
	case MethodBank, MethodCard, MethodVisa, MethodMastercard, MethodMada, MethodTransfer:
		return true
	}
	return false
}

// CashRole selects the cash or bank account receiving or paying the tender.
func (m PaymentMethod) CashRole() accounts.Role {
	if m.UsesBank() {
		return accounts.RoleBank
	}
	return accounts.RoleCashSales
}

// CustomerChannel tags where a sale came from.
type CustomerChannel string

const (
	ChannelDirect        CustomerChannel = "DIRECT"
	ChannelKeeta         CustomerChannel = "KEETA"
	ChannelHungerstation CustomerChannel = "HUNGERSTATION"
)

// ParseCustomerChannel folds case. Empty input means a direct sale.
func ParseCustomerChannel(s string) (CustomerChannel, error) {
	c := CustomerChannel(upper.String(strings.TrimSpace(s)))
	switch c {
	case "":
		return ChannelDirect, nil
	case ChannelDirect, ChannelKeeta, ChannelHungerstation:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown customer channel %q", ErrInvalidDocument, s)
}

// Aggregator reports delivery platforms. Their sales carry no discount and
// settle through a later receipt.
func (c CustomerChannel) Aggregator() bool {
	return c == ChannelKeeta || c == ChannelHungerstation
}

// ReceivableRole is the receivable account role of the channel.
func (c CustomerChannel) ReceivableRole() accounts.Role {
	switch c {
	case ChannelKeeta:
		return accounts.RoleReceivableKeeta
	case ChannelHungerstation:
		return accounts.RoleReceivableHungerstation
	}
	return accounts.RoleAccountsReceivable
}

// Amounts are the monetary fields shared by invoices.
type Amounts struct {
	BeforeTax decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
}

// SalesInvoice is a finalized sale.
type SalesInvoice struct {
	ID            int64
	Number        string
	Date          time.Time
	BranchCode    string
	Customer      string
	Channel       CustomerChannel
	PaymentMethod PaymentMethod
	Amounts
}

// PurchaseInvoice is a finalized supplier invoice for inventory.
type PurchaseInvoice struct {
	ID            int64
	Number        string
	Date          time.Time
	BranchCode    string
	Supplier      string
	PaymentMethod PaymentMethod
	Paid          bool
	Amounts
}

// ExpenseInvoice is a finalized direct expense.
type ExpenseInvoice struct {
	ID            int64
	Number        string
	Date          time.Time
	BranchCode    string
	ExpenseType   string
	PaymentMethod PaymentMethod
	Paid          bool
	Amounts
}

// PayrollLine is the net salary of one employee.
type PayrollLine struct {
	EmployeeID int64
	Amount     decimal.Decimal
}

// Payroll is a monthly salary accrual.
type Payroll struct {
	ID         int64
	Month      time.Time
	Date       time.Time
	BranchCode string
	Lines      []PayrollLine
}

// Payment settles a previously unpaid invoice.
type Payment struct {
	ID            int64
	InvoiceID     int64
	InvoiceType   journals.InvoiceType
	Date          time.Time
	BranchCode    string
	Amount        decimal.Decimal
	Commission    decimal.Decimal
	PaymentMethod PaymentMethod
}

// SalaryPayment pays out accrued salaries.
type SalaryPayment struct {
	ID            int64
	SalaryID      int64
	EmployeeID    *int64
	Date          time.Time
	BranchCode    string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
}

package integration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

type amountsRequest struct {
	BeforeTax decimal.Decimal `json:"amount_before_tax"`
	Discount  decimal.Decimal `json:"discount_amount"`
	Tax       decimal.Decimal `json:"tax_amount"`
}

func (a amountsRequest) amounts() Amounts {
	return Amounts{BeforeTax: a.BeforeTax, Discount: a.Discount, Tax: a.Tax}
}

type salesRequest struct {
	ID            int64  `json:"id" validate:"required,gt=0"`
	Number        string `json:"invoice_number" validate:"max=64"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode    string `json:"branch_code" validate:"omitempty,max=32"`
	Customer      string `json:"customer_name" validate:"max=200"`
	Channel       string `json:"customer_channel" validate:"max=32"`
	PaymentMethod string `json:"payment_method" validate:"max=32"`
	amountsRequest
}

func (r salesRequest) document() (SalesInvoice, error) {
	channel, err := ParseCustomerChannel(r.Channel)
	if err != nil {
		return SalesInvoice{}, err
	}
	return SalesInvoice{
		ID:            r.ID,
		Number:        r.Number,
		Date:          mustDate(r.Date),
		BranchCode:    r.BranchCode,
		Customer:      r.Customer,
		Channel:       channel,
		PaymentMethod: ParsePaymentMethod(r.PaymentMethod),
		Amounts:       r.amounts(),
	}, nil
}

type purchaseRequest struct {
	ID            int64  `json:"id" validate:"required,gt=0"`
	Number        string `json:"invoice_number" validate:"max=64"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode    string `json:"branch_code" validate:"omitempty,max=32"`
	Supplier      string `json:"supplier_name" validate:"max=200"`
	PaymentMethod string `json:"payment_method" validate:"max=32"`
	Paid          bool   `json:"is_paid"`
	amountsRequest
}

func (r purchaseRequest) document() PurchaseInvoice {
	return PurchaseInvoice{
		ID:            r.ID,
		Number:        r.Number,
		Date:          mustDate(r.Date),
		BranchCode:    r.BranchCode,
		Supplier:      r.Supplier,
		PaymentMethod: ParsePaymentMethod(r.PaymentMethod),
		Paid:          r.Paid,
		Amounts:       r.amounts(),
	}
}

type expenseRequest struct {
	ID            int64  `json:"id" validate:"required,gt=0"`
	Number        string `json:"invoice_number" validate:"max=64"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode    string `json:"branch_code" validate:"omitempty,max=32"`
	ExpenseType   string `json:"expense_type" validate:"max=64"`
	PaymentMethod string `json:"payment_method" validate:"max=32"`
	Paid          bool   `json:"is_paid"`
	amountsRequest
}

func (r expenseRequest) document() ExpenseInvoice {
	return ExpenseInvoice{
		ID:            r.ID,
		Number:        r.Number,
		Date:          mustDate(r.Date),
		BranchCode:    r.BranchCode,
		ExpenseType:   r.ExpenseType,
		PaymentMethod: ParsePaymentMethod(r.PaymentMethod),
		Paid:          r.Paid,
		Amounts:       r.amounts(),
	}
}

type payrollRequest struct {
	ID         int64                `json:"id" validate:"required,gt=0"`
	Month      string               `json:"month" validate:"required,datetime=2006-01"`
	Date       string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	BranchCode string               `json:"branch_code" validate:"omitempty,max=32"`
	Lines      []payrollLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type payrollLineRequest struct {
	EmployeeID int64           `json:"employee_id" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"net_salary"`
}

func (r payrollRequest) document() Payroll {
	month, _ := time.Parse("2006-01", r.Month)
	run := Payroll{ID: r.ID, Month: month, BranchCode: r.BranchCode}
	if r.Date != "" {
		run.Date = mustDate(r.Date)
	}
	for _, l := range r.Lines {
		run.Lines = append(run.Lines, PayrollLine{EmployeeID: l.EmployeeID, Amount: l.Amount})
	}
	return run
}

type paymentRequest struct {
	ID            int64           `json:"id" validate:"required,gt=0"`
	InvoiceID     int64           `json:"invoice_id" validate:"required,gt=0"`
	InvoiceType   string          `json:"invoice_type" validate:"required,oneof=sales purchase expense"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode    string          `json:"branch_code" validate:"omitempty,max=32"`
	Amount        decimal.Decimal `json:"amount"`
	Commission    decimal.Decimal `json:"commission"`
	PaymentMethod string          `json:"payment_method" validate:"max=32"`
}

func (r paymentRequest) document() Payment {
	return Payment{
		ID:            r.ID,
		InvoiceID:     r.InvoiceID,
		InvoiceType:   journals.InvoiceType(r.InvoiceType),
		Date:          mustDate(r.Date),
		BranchCode:    r.BranchCode,
		Amount:        r.Amount,
		Commission:    r.Commission,
		PaymentMethod: ParsePaymentMethod(r.PaymentMethod),
	}
}

type salaryPaymentRequest struct {
	ID            int64           `json:"id" validate:"required,gt=0"`
	SalaryID      int64           `json:"salary_id" validate:"required,gt=0"`
	EmployeeID    *int64          `json:"employee_id" validate:"omitempty,gt=0"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode    string          `json:"branch_code" validate:"omitempty,max=32"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"max=32"`
}

func (r salaryPaymentRequest) document() SalaryPayment {
	return SalaryPayment{
		ID:            r.ID,
		SalaryID:      r.SalaryID,
		EmployeeID:    r.EmployeeID,
		Date:          mustDate(r.Date),
		BranchCode:    r.BranchCode,
		Amount:        r.Amount,
		PaymentMethod: ParsePaymentMethod(r.PaymentMethod),
	}
}

// mustDate parses a date the validator already accepted.
func mustDate(s string) time.Time {
	d, _ := shared.ParseDate(s)
	return d
}

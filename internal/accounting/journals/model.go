package journals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// Status enumerates journal lifecycle values.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// InvoiceType names the kind of source document an entry is linked to.
type InvoiceType string

const (
	InvoiceSales           InvoiceType = "sales"
	InvoicePurchase        InvoiceType = "purchase"
	InvoiceExpense         InvoiceType = "expense"
	InvoiceSalesPayment    InvoiceType = "sales_payment"
	InvoicePurchasePayment InvoiceType = "purchase_payment"
	InvoiceExpensePayment  InvoiceType = "expense_payment"
	InvoiceSalaryPayment   InvoiceType = "salary_payment"
)

func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceSales, InvoicePurchase, InvoiceExpense, InvoiceSalesPayment,
		InvoicePurchasePayment, InvoiceExpensePayment, InvoiceSalaryPayment:
		return true
	}
	return false
}

// Linkage ties an entry to at most one source document.
type Linkage struct {
	InvoiceID   *int64      `json:"invoice_id,omitempty"`
	InvoiceType InvoiceType `json:"invoice_type,omitempty"`
	SalaryID    *int64      `json:"salary_id,omitempty"`
}

// InvoiceLink links an entry to an invoice or payment document.
func InvoiceLink(t InvoiceType, id int64) Linkage {
	return Linkage{InvoiceID: &id, InvoiceType: t}
}

// SalaryLink links an entry to a payroll run.
func SalaryLink(id int64) Linkage {
	return Linkage{SalaryID: &id}
}

func (l Linkage) IsZero() bool {
	return l.InvoiceID == nil && l.InvoiceType == "" && l.SalaryID == nil
}

// Validate enforces that invoice id and type come together and exclude salary_id.
func (l Linkage) Validate() error {
	if l.IsZero() {
		return nil
	}
	if l.SalaryID != nil {
		if l.InvoiceID != nil || l.InvoiceType != "" {
			return fmt.Errorf("%w: salary and invoice linkage are exclusive", shared.ErrInvalidLinkage)
		}
		return nil
	}
	if l.InvoiceID == nil || !l.InvoiceType.Valid() {
		return fmt.Errorf("%w: invoice_id requires a valid invoice_type", shared.ErrInvalidLinkage)
	}
	return nil
}

// LockKey returns the advisory lock key of the linked document.
func (l Linkage) LockKey() string {
	if l.SalaryID != nil {
		return platformshared.LinkageLockKey("salary", *l.SalaryID)
	}
	if l.InvoiceID != nil {
		return platformshared.LinkageLockKey(string(l.InvoiceType), *l.InvoiceID)
	}
	return ""
}

// Entry is one atomic accounting transaction.
type Entry struct {
	ID          int64           `json:"id"`
	Number      string          `json:"entry_number"`
	Date        time.Time       `json:"date"`
	BranchCode  string          `json:"branch_code,omitempty"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Linkage
	ReversalOf *int64    `json:"reversal_of,omitempty"`
	CreatedBy  *int64    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Lines      []Line    `json:"lines,omitempty"`
}

// Line is one leg of an entry.
type Line struct {
	ID             int64           `json:"id"`
	JournalID      int64           `json:"journal_id"`
	LineNo         int             `json:"line_no"`
	AccountID      int64           `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description,omitempty"`
	LineDate       time.Time       `json:"line_date"`
	EmployeeID     *int64          `json:"employee_id,omitempty"`
	CostCenter     string          `json:"cost_center,omitempty"`
	InvoiceID      *int64          `json:"invoice_id,omitempty"`
	InvoiceType    InvoiceType     `json:"invoice_type,omitempty"`
	AttachmentPath string          `json:"attachment_path,omitempty"`
}

// LineTotals sums the lines.
func (e Entry) LineTotals() (debit, credit decimal.Decimal) {
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Postable reports whether the lines balance with a non-zero total.
func (e Entry) Postable() bool {
	debit, credit := e.LineTotals()
	return shared.Balanced(debit, credit) && !shared.Round2(debit).IsZero()
}

// LinesFor returns the lines booked to code.
func (e Entry) LinesFor(code string) []Line {
	var out []Line
	for _, l := range e.Lines {
		if l.AccountCode == code {
			out = append(out, l)
		}
	}
	return out
}

// Kind selects the entry number scheme.
type Kind string

const (
	KindSales         Kind = "SAL"
	KindPurchase      Kind = "PUR"
	KindExpense       Kind = "EXP"
	KindPayroll       Kind = "PR"
	KindReceipt       Kind = "RCV"
	KindPayment       Kind = "PAY"
	KindSalaryPayment Kind = "SALPAY"
	KindManual        Kind = "MAN"
	KindReversal      Kind = "REV"
)

const (
	maxNumberAttempts   = 100
	reversalPrefix      = "JE-REV-"
	reversalDescription = "Reversal of"
)

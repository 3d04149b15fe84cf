package journals

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// LineInput describes a candidate journal line.
type LineInput struct {
	AccountCode    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Description    string
	LineDate       *time.Time
	EmployeeID     *int64
	CostCenter     string
	AttachmentPath string
}

// CreateInput groups fields required to create a journal entry.
type CreateInput struct {
	Date        time.Time
	BranchCode  string
	Description string
	Lines       []LineInput
	Linkage     Linkage
	Kind        Kind
	SourceRef   string
	// AsDraft keeps the entry unposted. False posts it in the same transaction.
	AsDraft bool
	// FiscalYear optionally names the year to book against; zero resolves it by date.
	FiscalYear        int
	AllowNoFiscalYear bool
	// UniqueLinkage rejects the entry when the linked document already has one.
	UniqueLinkage bool
	ActorID       int64
}

// EditInput replaces the header and lines of a draft.
type EditInput struct {
	Date        time.Time
	BranchCode  string
	Description string
	Lines       []LineInput
	FiscalYear  int
	ActorID     int64
}

// ListFilter narrows journal listings.
type ListFilter struct {
	Status     Status
	From       time.Time
	To         time.Time
	BranchCode string
	Limit      int
	Offset     int
}

type lineRequest struct {
	AccountCode    string          `json:"account_code" validate:"required"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	LineDate       string          `json:"line_date" validate:"omitempty,datetime=2006-01-02"`
	EmployeeID     *int64          `json:"employee_id"`
	CostCenter     string          `json:"cost_center"`
	AttachmentPath string          `json:"attachment_path"`
}

type entryRequest struct {
	Date        string        `json:"date" validate:"required,datetime=2006-01-02"`
	BranchCode  string        `json:"branch_code" validate:"omitempty,max=32"`
	Description string        `json:"description" validate:"max=500"`
	FiscalYear  int           `json:"fiscal_year" validate:"omitempty,gt=1900"`
	Post        bool          `json:"post"`
	Lines       []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r entryRequest) lineInputs() []LineInput {
	out := make([]LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		in := LineInput{
			AccountCode:    l.AccountCode,
			Debit:          l.Debit,
			Credit:         l.Credit,
			Description:    l.Description,
			EmployeeID:     l.EmployeeID,
			CostCenter:     l.CostCenter,
			AttachmentPath: l.AttachmentPath,
		}
		if l.LineDate != "" {
			if d, err := shared.ParseDate(l.LineDate); err == nil {
				in.LineDate = &d
			}
		}
		out = append(out, in)
	}
	return out
}

package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// Journals exposes the journal operations required by integrations.
type Journals interface {
	Create(ctx context.Context, in journals.CreateInput) (journals.Entry, error)
	FindByLinkage(ctx context.Context, link journals.Linkage) (journals.Entry, bool, error)
}

// ChartOfAccounts provides role resolution.
type ChartOfAccounts interface {
	Registry(ctx context.Context) (*accounts.Registry, error)
}

// FiscalCalendar provides the posting calendar.
type FiscalCalendar interface {
	Calendar(ctx context.Context) (periods.Calendar, error)
}

// Outcome reports the entry booked for a document. Created is false when the
// document had already been posted.
type Outcome struct {
	Entry   journals.Entry
	Created bool
}

// sourceNamespace derives stable source ids for log correlation.
var sourceNamespace = uuid.MustParse("6f1c2d8e-4b7a-5e39-9a61-0c3f5d2b8e47")

// Hooks turns finalized business documents into posted journal entries.
type Hooks struct {
	journals Journals
	coa      ChartOfAccounts
	calendar FiscalCalendar
	logger   *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(j Journals, coa ChartOfAccounts, calendar FiscalCalendar, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{journals: j, coa: coa, calendar: calendar, logger: logger}
}

type posting struct {
	date        time.Time
	branch      string
	description string
	kind        journals.Kind
	ref         string
	link        journals.Linkage
	build       func(b *JournalBuilder) error
}

// PostSales books a sales invoice. Direct non-credit sales are cleared to
// cash or bank in the same entry; aggregator sales stay receivable.
func (h *Hooks) PostSales(ctx context.Context, inv SalesInvoice) (Outcome, error) {
	if err := checkDocument(inv.ID, inv.Date, inv.Amounts); err != nil {
		return Outcome{}, err
	}
	channel, err := ParseCustomerChannel(string(inv.Channel))
	if err != nil {
		return Outcome{}, err
	}
	discount := inv.Discount
	if channel.Aggregator() {
		discount = decimal.Zero
	}
	net, total := netAndTotal(inv.BeforeTax, discount, inv.Tax)
	if total.IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	credit := inv.PaymentMethod.IsCredit()
	return h.post(ctx, posting{
		date:        inv.Date,
		branch:      inv.BranchCode,
		description: describe("Sales invoice", inv.Number, inv.ID, inv.Customer),
		kind:        journals.KindSales,
		ref:         refOf(inv.Number, inv.ID),
		link:        journals.InvoiceLink(journals.InvoiceSales, inv.ID),
		build: func(b *JournalBuilder) error {
			revenue := accounts.RoleRevenueImmediate
			if credit {
				revenue = accounts.RoleRevenueCredit
			}
			receivable := b.Role(channel.ReceivableRole())
			b.AddRevenueRecognition(receivable, b.Role(revenue), b.Role(accounts.RoleVATOutput), net, inv.Tax, "Sales")
			if channel == ChannelDirect && !credit {
				b.AddImmediateSettlement(b.Role(inv.PaymentMethod.CashRole()), receivable, total, FlowIn, "Collection")
			}
			return nil
		},
	})
}

// PostPurchase books an inventory purchase.
func (h *Hooks) PostPurchase(ctx context.Context, inv PurchaseInvoice) (Outcome, error) {
	if err := checkDocument(inv.ID, inv.Date, inv.Amounts); err != nil {
		return Outcome{}, err
	}
	net, total := netAndTotal(inv.BeforeTax, inv.Discount, inv.Tax)
	if total.IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	return h.post(ctx, posting{
		date:        inv.Date,
		branch:      inv.BranchCode,
		description: describe("Purchase invoice", inv.Number, inv.ID, inv.Supplier),
		kind:        journals.KindPurchase,
		ref:         refOf(inv.Number, inv.ID),
		link:        journals.InvoiceLink(journals.InvoicePurchase, inv.ID),
		build: func(b *JournalBuilder) error {
			payable := b.Role(accounts.RoleAccountsPayable)
			b.AddCostRecognition(b.Role(accounts.RoleInventory), b.Role(accounts.RoleVATInput), payable, net, inv.Tax, "Purchase")
			if inv.Paid && !inv.PaymentMethod.IsCredit() {
				b.AddImmediateSettlement(b.Role(inv.PaymentMethod.CashRole()), payable, total, FlowOut, "Payment")
			}
			return nil
		},
	})
}

// PostExpense books an expense against the catalog account of its type.
// Obligations owed to a platform or authority are credited to their own
// liability instead of AP.
func (h *Hooks) PostExpense(ctx context.Context, inv ExpenseInvoice) (Outcome, error) {
	if err := checkDocument(inv.ID, inv.Date, inv.Amounts); err != nil {
		return Outcome{}, err
	}
	net, total := netAndTotal(inv.BeforeTax, inv.Discount, inv.Tax)
	if total.IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	kind, known := LookupExpenseType(inv.ExpenseType)
	if !known {
		kind = ExpenseType{ID: inv.ExpenseType, AccountCode: DefaultExpenseCode}
	}
	return h.post(ctx, posting{
		date:        inv.Date,
		branch:      inv.BranchCode,
		description: describe("Expense", inv.Number, inv.ID, kind.Label),
		kind:        journals.KindExpense,
		ref:         refOf(inv.Number, inv.ID),
		link:        journals.InvoiceLink(journals.InvoiceExpense, inv.ID),
		build: func(b *JournalBuilder) error {
			payable := kind.LiabilityCode
			if payable == "" {
				payable = b.Role(accounts.RoleAccountsPayable)
			}
			b.AddCostRecognition(kind.AccountCode, b.Role(accounts.RoleVATInput), payable, net, inv.Tax, "Expense")
			if inv.Paid && !inv.PaymentMethod.IsCredit() {
				b.AddImmediateSettlement(b.Role(inv.PaymentMethod.CashRole()), payable, total, FlowOut, "Payment")
			}
			return nil
		},
	})
}

// PostPayroll accrues a monthly payroll run.
func (h *Hooks) PostPayroll(ctx context.Context, run Payroll) (Outcome, error) {
	if run.ID <= 0 || run.Month.IsZero() {
		return Outcome{}, fmt.Errorf("%w: payroll id and month are required", ErrInvalidDocument)
	}
	date := run.Date
	if date.IsZero() {
		date = endOfMonth(run.Month)
	}
	total := decimal.Zero
	for _, l := range run.Lines {
		total = total.Add(l.Amount)
	}
	if shared.Round2(total).IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	month := run.Month.Format("200601")
	return h.post(ctx, posting{
		date:        date,
		branch:      run.BranchCode,
		description: "Payroll " + run.Month.Format("2006-01"),
		kind:        journals.KindPayroll,
		ref:         month,
		link:        journals.SalaryLink(run.ID),
		build: func(b *JournalBuilder) error {
			b.AddPayrollAccrual(b.Role(accounts.RoleSalaryExpense), b.Role(accounts.RoleSalariesPayable), run.Lines, "Salaries "+month)
			return nil
		},
	})
}

// PostReceipt settles a sales invoice. The receivable credited is the one
// the invoice entry debited.
func (h *Hooks) PostReceipt(ctx context.Context, p Payment) (Outcome, error) {
	if p.InvoiceType == "" {
		p.InvoiceType = journals.InvoiceSales
	}
	if p.InvoiceType != journals.InvoiceSales {
		return Outcome{}, fmt.Errorf("%w: receipts settle sales invoices, got %s", ErrInvalidDocument, p.InvoiceType)
	}
	return h.settle(ctx, p, journals.InvoiceSalesPayment, journals.KindReceipt, FlowIn)
}

// PostPayment settles a purchase or expense invoice against the payable
// its entry credited.
func (h *Hooks) PostPayment(ctx context.Context, p Payment) (Outcome, error) {
	var linkType journals.InvoiceType
	switch p.InvoiceType {
	case journals.InvoicePurchase:
		linkType = journals.InvoicePurchasePayment
	case journals.InvoiceExpense:
		linkType = journals.InvoiceExpensePayment
	default:
		return Outcome{}, fmt.Errorf("%w: payments settle purchase or expense invoices, got %q", ErrInvalidDocument, p.InvoiceType)
	}
	return h.settle(ctx, p, linkType, journals.KindPayment, FlowOut)
}

// PostSalaryPayment pays out accrued salaries.
func (h *Hooks) PostSalaryPayment(ctx context.Context, p SalaryPayment) (Outcome, error) {
	if p.ID <= 0 || p.Date.IsZero() {
		return Outcome{}, fmt.Errorf("%w: salary payment id and date are required", ErrInvalidDocument)
	}
	amount := shared.Round2(p.Amount)
	if amount.IsNegative() {
		return Outcome{}, fmt.Errorf("%w: negative amount", ErrInvalidDocument)
	}
	if amount.IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	return h.post(ctx, posting{
		date:        p.Date,
		branch:      p.BranchCode,
		description: fmt.Sprintf("Salary payment %d", p.ID),
		kind:        journals.KindSalaryPayment,
		ref:         strconv.FormatInt(p.ID, 10),
		link:        journals.InvoiceLink(journals.InvoiceSalaryPayment, p.ID),
		build: func(b *JournalBuilder) error {
			b.AddImmediateSettlement(b.Role(p.PaymentMethod.CashRole()), b.Role(accounts.RoleSalariesPayable), amount, FlowOut, "Salary payment")
			if p.EmployeeID != nil {
				for i := range b.lines {
					b.lines[i].EmployeeID = p.EmployeeID
				}
			}
			return nil
		},
	})
}

func (h *Hooks) settle(ctx context.Context, p Payment, linkType journals.InvoiceType, kind journals.Kind, flow Flow) (Outcome, error) {
	if p.ID <= 0 || p.InvoiceID <= 0 || p.Date.IsZero() {
		return Outcome{}, fmt.Errorf("%w: payment id, invoice id and date are required", ErrInvalidDocument)
	}
	amount, commission := shared.Round2(p.Amount), shared.Round2(p.Commission)
	if amount.IsNegative() || commission.IsNegative() {
		return Outcome{}, fmt.Errorf("%w: negative amount", ErrInvalidDocument)
	}
	if amount.IsZero() {
		return Outcome{}, ErrNothingToPost
	}
	original, found, err := h.journals.FindByLinkage(ctx, journals.InvoiceLink(p.InvoiceType, p.InvoiceID))
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Outcome{}, fmt.Errorf("%w: %s %d", ErrInvoiceNotBooked, p.InvoiceType, p.InvoiceID)
	}
	return h.post(ctx, posting{
		date:        p.Date,
		branch:      p.BranchCode,
		description: fmt.Sprintf("Settlement of %s", original.Number),
		kind:        kind,
		ref:         strconv.FormatInt(p.ID, 10),
		link:        journals.InvoiceLink(linkType, p.ID),
		build: func(b *JournalBuilder) error {
			counter, err := counterpartyCode(original, b.reg, flow)
			if err != nil {
				return err
			}
			commissionCode := ""
			if flow == FlowIn && commission.IsPositive() {
				commissionCode = b.Role(accounts.RolePlatformCommission)
			}
			b.AddSettlement(b.Role(p.PaymentMethod.CashRole()), counter, amount, commission, commissionCode, flow, "Settlement")
			return nil
		},
	})
}

// counterpartyCode finds the receivable debited or payable credited by the
// original entry.
func counterpartyCode(original journals.Entry, reg *accounts.Registry, flow Flow) (string, error) {
	var candidates []string
	if flow == FlowIn {
		candidates = roleCodes(reg, accounts.ReceivableRoles)
	} else {
		candidates = append(roleCodes(reg, accounts.PayableRoles), liabilityCodes()...)
	}
	for _, l := range original.Lines {
		if !slices.Contains(candidates, l.AccountCode) {
			continue
		}
		if flow == FlowIn && l.Debit.IsPositive() {
			return l.AccountCode, nil
		}
		if flow == FlowOut && l.Credit.IsPositive() {
			return l.AccountCode, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSettlementAccount, original.Number)
}

func roleCodes(reg *accounts.Registry, roles []accounts.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if code, err := reg.RoleCode(r); err == nil {
			out = append(out, code)
		}
	}
	return out
}

func (h *Hooks) post(ctx context.Context, p posting) (Outcome, error) {
	sourceID := uuid.NewSHA1(sourceNamespace, []byte(p.link.LockKey()))
	logger := h.logger.With(slog.String("source", p.link.LockKey()), slog.String("source_id", sourceID.String()))

	existing, found, err := h.journals.FindByLinkage(ctx, p.link)
	if err != nil {
		return Outcome{}, err
	}
	if found {
		logger.Debug("document already posted", slog.String("number", existing.Number))
		return Outcome{Entry: existing}, nil
	}

	cal, err := h.calendar.Calendar(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if open, reason := cal.IsPeriodOpenForDate(p.date); !open {
		return Outcome{}, fmt.Errorf("%w: %s", shared.ErrFiscalPeriodClosed, reason)
	}

	reg, err := h.coa.Registry(ctx)
	if err != nil {
		return Outcome{}, err
	}
	b := NewJournalBuilder(reg)
	if err := p.build(b); err != nil {
		return Outcome{}, err
	}
	lines, err := b.Lines()
	if err != nil {
		return Outcome{}, err
	}
	if len(lines) == 0 {
		return Outcome{}, ErrNothingToPost
	}

	entry, err := h.journals.Create(ctx, journals.CreateInput{
		Date:          p.date,
		BranchCode:    p.branch,
		Description:   p.description,
		Lines:         lines,
		Linkage:       p.link,
		Kind:          p.kind,
		SourceRef:     p.ref,
		UniqueLinkage: true,
		ActorID:       platformshared.ActorFromContext(ctx),
	})
	if errors.Is(err, shared.ErrSourceAlreadyLinked) {
		existing, found, ferr := h.journals.FindByLinkage(ctx, p.link)
		if ferr != nil {
			return Outcome{}, ferr
		}
		if found {
			logger.Info("document posted concurrently", slog.String("number", existing.Number))
			return Outcome{Entry: existing}, nil
		}
	}
	if err != nil {
		return Outcome{}, err
	}
	logger.Info("document posted", slog.String("number", entry.Number))
	return Outcome{Entry: entry, Created: true}, nil
}

func checkDocument(id int64, date time.Time, a Amounts) error {
	if id <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidDocument)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDocument)
	}
	if a.BeforeTax.IsNegative() || a.Discount.IsNegative() || a.Tax.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidDocument)
	}
	return nil
}

// netAndTotal clamps the discounted base at zero and adds tax.
func netAndTotal(beforeTax, discount, tax decimal.Decimal) (net, total decimal.Decimal) {
	net = shared.Round2(shared.MaxZero(beforeTax.Sub(discount)))
	return net, net.Add(shared.Round2(tax))
}

func refOf(number string, id int64) string {
	if number != "" {
		return number
	}
	return strconv.FormatInt(id, 10)
}

func describe(kind, number string, id int64, party string) string {
	s := fmt.Sprintf("%s %s", kind, refOf(number, id))
	if party != "" {
		s += " - " + party
	}
	return s
}

func endOfMonth(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1)
}

package integration

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// Flow is the direction of cash in a settlement.
type Flow int

const (
	// FlowIn receives cash and credits the counterparty.
	FlowIn Flow = iota
	// FlowOut pays cash and debits the counterparty.
	FlowOut
)

// JournalBuilder composes balanced line sets out of accounting primitives.
// Every account is checked against the registry; the first failure sticks
// and is reported by Lines.
type JournalBuilder struct {
	reg   *accounts.Registry
	lines []journals.LineInput
	err   error
}

func NewJournalBuilder(reg *accounts.Registry) *JournalBuilder {
	return &JournalBuilder{reg: reg}
}

// Role resolves role to a postable account code.
func (b *JournalBuilder) Role(role accounts.Role) string {
	acc, err := b.reg.Resolve(role)
	if err != nil {
		b.fail(err)
		return ""
	}
	return acc.Code
}

// AddRevenueRecognition books Dr receivable gross, Cr revenue net, Cr VAT output tax.
func (b *JournalBuilder) AddRevenueRecognition(receivable, revenue, vat string, net, tax decimal.Decimal, memo string) *JournalBuilder {
	net, tax = shared.Round2(net), shared.Round2(tax)
	b.debit(receivable, net.Add(tax), memo, nil)
	b.credit(revenue, net, memo, nil)
	b.credit(vat, tax, memo, nil)
	return b
}

// AddCostRecognition books Dr cost net, Dr VAT input tax, Cr payable gross.
func (b *JournalBuilder) AddCostRecognition(cost, vat, payable string, net, tax decimal.Decimal, memo string) *JournalBuilder {
	net, tax = shared.Round2(net), shared.Round2(tax)
	b.debit(cost, net, memo, nil)
	b.debit(vat, tax, memo, nil)
	b.credit(payable, net.Add(tax), memo, nil)
	return b
}

// AddImmediateSettlement clears counter against cash inside the same entry.
func (b *JournalBuilder) AddImmediateSettlement(cash, counter string, amount decimal.Decimal, flow Flow, memo string) *JournalBuilder {
	amount = shared.Round2(amount)
	if flow == FlowIn {
		b.debit(cash, amount, memo, nil)
		b.credit(counter, amount, memo, nil)
		return b
	}
	b.debit(counter, amount, memo, nil)
	b.credit(cash, amount, memo, nil)
	return b
}

// AddPayrollAccrual books Dr expense for the run total and one Cr payable
// line per employee.
func (b *JournalBuilder) AddPayrollAccrual(expense, payable string, lines []PayrollLine, memo string) *JournalBuilder {
	total := decimal.Zero
	for _, l := range lines {
		amount := shared.Round2(l.Amount)
		if amount.IsNegative() {
			b.fail(fmt.Errorf("%w: negative salary for employee %d", ErrInvalidDocument, l.EmployeeID))
			return b
		}
		total = total.Add(amount)
	}
	b.debit(expense, total, memo, nil)
	for _, l := range lines {
		employee := l.EmployeeID
		b.credit(payable, shared.Round2(l.Amount), memo, &employee)
	}
	return b
}

// AddSettlement clears a receivable or payable booked by an earlier entry.
// On receipts a commission withheld by the collector is debited to commission
// and only the remainder reaches cash.
func (b *JournalBuilder) AddSettlement(cash, counter string, amount, commission decimal.Decimal, commissionCode string, flow Flow, memo string) *JournalBuilder {
	amount, commission = shared.Round2(amount), shared.Round2(commission)
	if flow == FlowOut {
		return b.AddImmediateSettlement(cash, counter, amount, FlowOut, memo)
	}
	if commission.GreaterThan(amount) {
		b.fail(fmt.Errorf("%w: commission %s exceeds amount %s", ErrInvalidDocument, commission.StringFixed(2), amount.StringFixed(2)))
		return b
	}
	b.debit(cash, amount.Sub(commission), memo, nil)
	b.debit(commissionCode, commission, memo, nil)
	b.credit(counter, amount, memo, nil)
	return b
}

// Lines returns the composed lines or the first error met while building.
func (b *JournalBuilder) Lines() ([]journals.LineInput, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.lines, nil
}

// Totals sums the composed lines.
func (b *JournalBuilder) Totals() (debit, credit decimal.Decimal) {
	for _, l := range b.lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

func (b *JournalBuilder) debit(code string, amount decimal.Decimal, memo string, employee *int64) {
	b.add(code, amount, decimal.Zero, memo, employee)
}

func (b *JournalBuilder) credit(code string, amount decimal.Decimal, memo string, employee *int64) {
	b.add(code, decimal.Zero, amount, memo, employee)
}

// add skips zero legs so optional tax and commission lines disappear.
func (b *JournalBuilder) add(code string, debit, credit decimal.Decimal, memo string, employee *int64) {
	if b.err != nil || (debit.IsZero() && credit.IsZero()) {
		return
	}
	if debit.IsNegative() || credit.IsNegative() {
		b.fail(fmt.Errorf("%w: negative amount on %s", ErrInvalidDocument, code))
		return
	}
	acc, ok := b.reg.Lookup(code)
	if !ok {
		b.fail(fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code))
		return
	}
	if !acc.Postable() || !b.reg.IsLeaf(code) {
		b.fail(fmt.Errorf("%w: %s", shared.ErrAccountNotPostable, code))
		return
	}
	b.lines = append(b.lines, journals.LineInput{
		AccountCode: code,
		Debit:       debit,
		Credit:      credit,
		Description: memo,
		EmployeeID:  employee,
	})
}

func (b *JournalBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

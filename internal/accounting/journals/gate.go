package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// GateLine is the part of a line the gates inspect.
type GateLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// GateInput is a candidate entry.
type GateInput struct {
	Date              time.Time
	FiscalYear        int
	Lines             []GateLine
	AllowNoFiscalYear bool
}

// AccountSource resolves accounts and the canonical leaf rule.
type AccountSource interface {
	Lookup(code string) (accounts.Account, bool)
	IsLeaf(code string) bool
}

// ValidateGates runs every pre-commit check and returns all violations. An
// empty result means the entry may be written.
func ValidateGates(in GateInput, cal periods.Calendar, src AccountSource) []shared.Violation {
	var out []shared.Violation
	add := func(g shared.Gate, line int, format string, args ...any) {
		out = append(out, shared.Violation{Gate: g, Line: line, Message: fmt.Sprintf(format, args...)})
	}

	if len(in.Lines) == 0 {
		add(shared.GateInput, 0, "at least one line is required")
	}
	for i, l := range in.Lines {
		switch {
		case strings.TrimSpace(l.AccountCode) == "":
			add(shared.GateInput, i+1, "account code is required")
		case l.Debit.IsNegative() || l.Credit.IsNegative():
			add(shared.GateInput, i+1, "amounts must not be negative")
		case !l.Debit.IsZero() && !l.Credit.IsZero():
			add(shared.GateInput, i+1, "line cannot carry both debit and credit")
		}
	}

	date := shared.DateOnly(in.Date)
	var (
		fy    periods.FiscalYear
		found bool
	)
	if in.FiscalYear != 0 {
		fy, found = cal.FiscalYearByNumber(in.FiscalYear)
	} else {
		fy, found = cal.FiscalYearForDate(date)
	}
	switch {
	case !found && !in.AllowNoFiscalYear:
		if in.FiscalYear != 0 {
			add(shared.GateFiscalYear, 0, "fiscal year %d not found", in.FiscalYear)
		} else {
			add(shared.GateFiscalYear, 0, periods.MsgNoFiscalYear)
		}
	case found && !fy.Contains(date):
		add(shared.GateDateInYear, 0, periods.MsgOutsideYear)
	case found:
		if open, reason := cal.CheckYear(fy, date); !open {
			add(shared.GatePeriodOpen, 0, reason)
		}
	}

	resolved := make([]*accounts.Account, len(in.Lines))
	var debit, credit decimal.Decimal
	for i, l := range in.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
		code := strings.TrimSpace(l.AccountCode)
		if code == "" {
			continue
		}
		acc, ok := src.Lookup(code)
		if !ok {
			add(shared.GateAccountExists, i+1, "account %s not found", code)
			continue
		}
		resolved[i] = &acc
	}

	if !shared.Balanced(debit, credit) {
		add(shared.GateBalanced, 0, "unbalanced: debit=%s credit=%s", debit.StringFixed(2), credit.StringFixed(2))
	}

	for i, acc := range resolved {
		if acc == nil {
			continue
		}
		switch {
		case !acc.AllowPosting || acc.IsControl:
			add(shared.GatePostable, i+1, "account %s does not allow posting", acc.Code)
		case !acc.IsActive:
			add(shared.GatePostable, i+1, "account %s is inactive", acc.Code)
		case !src.IsLeaf(acc.Code):
			add(shared.GatePostable, i+1, "account %s is not a leaf account", acc.Code)
		}
	}

	// Gate 7 (anti-backdating) is reserved and never rejects.
	return out
}

func gateLines(lines []LineInput) []GateLine {
	out := make([]GateLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, GateLine{AccountCode: strings.TrimSpace(l.AccountCode), Debit: l.Debit, Credit: l.Credit})
	}
	return out
}

func gateCodes(g []shared.Violation) []int {
	out := make([]int, 0, len(g))
	for _, v := range g {
		out = append(out, int(v.Gate))
	}
	return out
}

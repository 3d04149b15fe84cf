package reports

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestBuildTrialBalance(t *testing.T) {
	accts := []AccountBalance{
		{Code: "1111", Name: "Main Treasury", Type: accounts.AccountTypeAsset, Opening: dec("1000"), Debit: dec("200"), Credit: dec("150")},
		{Code: "1121", Name: "Main Bank", Type: accounts.AccountTypeAsset, Opening: dec("500"), Debit: dec("100"), Credit: dec("50")},
		{Code: "2111", Name: "Accounts Payable", Type: accounts.AccountTypeLiability, Opening: dec("-1500"), Debit: dec("10"), Credit: dec("110")},
		{Code: "4112", Name: "Unused", Type: accounts.AccountTypeRevenue},
	}

	tb := BuildTrialBalance(accts)
	if len(tb.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(tb.Groups))
	}
	if !tb.TotalDebit.Equal(dec("310")) {
		t.Fatalf("unexpected total debit: %v", tb.TotalDebit)
	}
	if !tb.TotalCredit.Equal(dec("310")) {
		t.Fatalf("unexpected total credit: %v", tb.TotalCredit)
	}
	if !tb.TotalOpening.IsZero() || !tb.TotalClosing.IsZero() {
		t.Fatalf("unexpected opening/closing totals: %v %v", tb.TotalOpening, tb.TotalClosing)
	}
	if !tb.Balanced() {
		t.Fatalf("expected balanced trial balance")
	}
	if tb.Groups[0].Key != "11" || len(tb.Groups[0].Accounts) != 2 {
		t.Fatalf("unexpected first group: %+v", tb.Groups[0])
	}
}

func TestBuildProfitAndLoss(t *testing.T) {
	accts := []AccountBalance{
		{Code: "4111", Name: "Sales", Type: accounts.AccountTypeRevenue, Credit: dec("1200")},
		{Code: "5110", Name: "Food", Type: accounts.AccountTypeCOGS, Debit: dec("300")},
		{Code: "5510", Name: "Advertising", Type: accounts.AccountTypeExpense, Debit: dec("200")},
		{Code: "1112", Name: "Cash", Type: accounts.AccountTypeAsset, Debit: dec("1200")},
	}

	pl := BuildProfitAndLoss(accts)
	if !pl.Revenue.Total.Equal(dec("1200")) {
		t.Fatalf("expected revenue total 1200 got %v", pl.Revenue.Total)
	}
	if !pl.GrossProfit.Equal(dec("900")) {
		t.Fatalf("expected gross profit 900 got %v", pl.GrossProfit)
	}
	if !pl.Expense.Total.Equal(dec("200")) {
		t.Fatalf("expected expense total 200 got %v", pl.Expense.Total)
	}
	if !pl.NetIncome.Equal(dec("700")) {
		t.Fatalf("expected net income 700 got %v", pl.NetIncome)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	accts := []AccountBalance{
		{Code: "1112", Name: "Cash", Type: accounts.AccountTypeAsset, Debit: dec("115")},
		{Code: "1170", Name: "VAT Input", Type: accounts.AccountTypeTax, Debit: dec("6")},
		{Code: "2141", Name: "VAT Output", Type: accounts.AccountTypeLiability, Credit: dec("15")},
		{Code: "2111", Name: "AP", Type: accounts.AccountTypeLiability, Credit: dec("46")},
		{Code: "3210", Name: "Capital", Type: accounts.AccountTypeEquity},
		{Code: "4111", Name: "Sales", Type: accounts.AccountTypeRevenue, Credit: dec("100")},
		{Code: "5110", Name: "Food", Type: accounts.AccountTypeCOGS, Debit: dec("40")},
	}

	bs := BuildBalanceSheet(accts)
	if !bs.Assets.Total.Equal(dec("121")) {
		t.Fatalf("expected assets 121 got %v", bs.Assets.Total)
	}
	if !bs.Liabilities.Total.Equal(dec("61")) {
		t.Fatalf("expected liabilities 61 got %v", bs.Liabilities.Total)
	}
	if !bs.Equity.Total.Equal(dec("60")) {
		t.Fatalf("expected equity 60 got %v", bs.Equity.Total)
	}
	if !bs.Balanced() {
		t.Fatalf("expected balanced sheet, L+E %v", bs.TotalLiabilitiesAndEquity)
	}
	if bs.Equity.Accounts[0].Code != CurrentEarningsCode {
		t.Fatalf("expected current earnings line, got %+v", bs.Equity.Accounts)
	}
}

func TestBuildVATReturn(t *testing.T) {
	vat := BuildVATReturn(dayOf(1), dayOf(30), dec("15"), dec("21"))
	if !vat.Net.Equal(dec("-6")) || vat.Payable() {
		t.Fatalf("expected refundable -6 got %v", vat.Net)
	}
}

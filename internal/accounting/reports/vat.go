package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATReturn nets output tax collected against input tax paid.
type VATReturn struct {
	From   time.Time       `json:"from"`
	To     time.Time       `json:"to"`
	Output decimal.Decimal `json:"output_vat"`
	Input  decimal.Decimal `json:"input_vat"`
	Net    decimal.Decimal `json:"net_vat"`
}

// Payable reports whether the period owes tax to the authority.
func (v VATReturn) Payable() bool {
	return v.Net.IsPositive()
}

// BuildVATReturn computes output minus input.
func BuildVATReturn(from, to time.Time, output, input decimal.Decimal) VATReturn {
	return VATReturn{From: from, To: to, Output: output, Input: input, Net: output.Sub(input)}
}

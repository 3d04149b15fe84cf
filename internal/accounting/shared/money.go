package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Round2 rounds a monetary amount to two decimals.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Balanced compares two sums after rounding to cents.
func Balanced(debit, credit decimal.Decimal) bool {
	return Round2(debit).Equal(Round2(credit))
}

// MaxZero clamps negative amounts to zero.
func MaxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// DateOnly strips the clock part and normalises to UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// Within reports whether d falls inside the inclusive range.
func Within(d, start, end time.Time) bool {
	d = DateOnly(d)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

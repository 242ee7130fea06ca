// Package valueobjects holds immutable monetary value types. All arithmetic is
// done in shopspring/decimal so balances never pick up binary float drift.
package valueobjects

import (
	"strings"

	"github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code
type Currency string

const USD Currency = "USD"

// DefaultCurrency is used whenever a currency cannot be determined.
const DefaultCurrency = USD

var hundred = decimal.NewFromInt(100)

// Money represents a monetary value with a specific currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// USDFromCents builds a USD value from an integer number of cents.
func USDFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -2), currency: USD}
}

// ParseCurrency is tolerant: anything that is not a well-formed three
// letter ISO 4217 code falls back to USD. The boolean reports whether the
// input was well formed.
func ParseCurrency(raw string) (Currency, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return DefaultCurrency, false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return DefaultCurrency, false
		}
	}
	return Currency(code), true
}

func (m Money) Amount() decimal.Decimal { return m.amount }

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.amount.Mul(hundred).Round(0).IntPart()
}

// Split divides the value into n parts that differ by at most one cent and
// always sum back to the original. Extra cents go to the first parts.
func (m Money) Split(n int) ([]Money, error) {
	if n <= 0 {
		return nil, errors.ValidationFailed("invalid split", "number of parts must be positive")
	}

	total := m.Cents()
	base := total / int64(n)
	remainder := total - base*int64(n)

	parts := make([]Money, n)
	for i := range parts {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		parts[i] = Money{amount: decimal.New(cents, -2), currency: m.currency}
	}
	return parts, nil
}

// DivideSafe returns m / n rounded to cents, or zero when n is not positive.
func (m Money) DivideSafe(n int) Money {
	if n <= 0 {
		return Money{amount: decimal.Zero, currency: m.currency}
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(n))).Round(2), currency: m.currency}
}

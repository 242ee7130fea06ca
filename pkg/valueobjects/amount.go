package valueobjects

import (
	"strings"

	"github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/shopspring/decimal"
)

// SettledCents is the residue, in cents, under which a balance counts as
// settled.
const SettledCents int64 = 1

// SettledEpsilon is SettledCents as a decimal.
var SettledEpsilon = decimal.New(SettledCents, -2)

// MaxAmount is the largest value a NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Amount is a two-decimal monetary quantity. On the wire it is always a
// string with exactly two fractional digits, e.g. "45.00".
type Amount struct {
	decimal.Decimal
}

// NewAmount rounds d to cents.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d.Round(2)}
}

// ZeroAmount returns a zero Amount.
func ZeroAmount() Amount {
	return Amount{Decimal: decimal.Zero}
}

// ParseAmount parses a positive amount with at most two fractional digits.
func ParseAmount(raw string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Amount{}, errors.ValidationFailed("invalid amount format", err.Error())
	}
	if !d.IsPositive() {
		return Amount{}, errors.ValidationFailed("invalid amount", "amount must be greater than zero")
	}
	if !d.Equal(d.Round(2)) {
		return Amount{}, errors.ValidationFailed("invalid amount", "amount cannot have more than 2 decimal places")
	}
	a := Amount{Decimal: d}
	if a.ExceedsMax() {
		return Amount{}, errors.ValidationFailed("invalid amount", "amount cannot exceed "+MaxAmount.StringFixed(2))
	}
	return a, nil
}

// ExceedsMax reports whether a is outside the storable range.
func (a Amount) ExceedsMax() bool {
	return a.Abs().GreaterThan(MaxAmount)
}

// Cents returns the amount as an integer number of cents.
func (a Amount) Cents() int64 {
	return a.Mul(hundred).Round(0).IntPart()
}

// IsSettled reports whether |a| <= SettledEpsilon.
func (a Amount) IsSettled() bool {
	return a.Abs().LessThanOrEqual(SettledEpsilon)
}

func (a Amount) String() string {
	return a.StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}

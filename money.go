package registre

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an exact monetary value in a given currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// EUR returns a euro Money from a major-unit decimal.
func EUR(value decimal.Decimal) Money { return Money{value: value, cur: money.EUR} }

// FromCents returns a euro Money from a minor-unit (cent) amount, the way
// annual-accounts files carry values.
func FromCents(cents int64) Money { return Money{value: decimal.New(cents, -2), cur: money.EUR} }

// ParseCents parses the fixed-width cent string of the annual-accounts files:
// decimal digits with optional leading spaces and a leading '-' for negative
// values, e.g. "000000012345600" is 123456.00.
func ParseCents(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("empty amount")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var cents int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return Money{}, fmt.Errorf("invalid amount %q", s)
		}
		cents = cents*10 + int64(r-'0')
	}
	if neg {
		cents = -cents
	}
	return FromCents(cents), nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// Decimal returns the major-unit value.
func (m Money) Decimal() decimal.Decimal { return m.value }

func (m Money) Currency() string   { return m.cur }
func (m Money) Equal(n Money) bool { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool       { return m.value.IsZero() }
func (m Money) IsNegative() bool   { return m.value.IsNegative() }
func (m Money) Neg() Money         { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Add(n Money) Money  { return Money{value: m.value.Add(n.value), cur: m.cur} }
func (m Money) Sub(n Money) Money  { return Money{value: m.value.Sub(n.value), cur: m.cur} }

package stress

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a monetary amount used for display.
//
// Valuation runs on float64; Money only carries the amount to the reports so
// that rounding and currency formatting are done in one place.
type Money struct {
	value   decimal.Decimal // as major unit value
	cur     string
	invalid string // printed instead of value, for a NaN or an infinity
}

// M returns an amount of money in 'currency'. A NaN or an infinity is kept
// as a non-finite amount that prints as such.
func M(value float64, currency string) Money {
	if nonFinite(value) {
		return Money{cur: currency, invalid: strconv.FormatFloat(value, 'f', -1, 64)}
	}
	return Money{value: decimal.NewFromFloat(value), cur: currency}
}

func nonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted in its currency, rounded to the
// currency fraction.
func (m Money) String() string {
	if m.invalid != "" {
		return m.invalid
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.invalid != "" {
		return m.invalid
	}
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string { return m.cur }
func (m Money) IsZero() bool     { return m.invalid == "" && m.value.IsZero() }

// Round returns m rounded to its currency fraction.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur, invalid: m.invalid}
}

type jsonMoney struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	if m.invalid != "" {
		return nil, fmt.Errorf("cannot encode %s %s", m.invalid, m.cur)
	}
	return json.Marshal(jsonMoney{Amount: m.value, Currency: m.cur})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var j jsonMoney
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	m.value, m.cur = j.Amount, j.Currency
	return nil
}

// Price formats a unit price with 2 decimals, without currency.
func Price(v float64) string {
	if nonFinite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

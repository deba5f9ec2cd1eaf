// Package money formats and adds monetary values using integer minor units.
// Amounts flow through the system as shopspring decimals; this package is the
// edge where they become display strings and currency-checked arithmetic.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency codes used by the app. INR is the default display currency.
const (
	INR = "INR"
	USD = "USD"
)

// Money is a currency-tagged amount in minor units.
type Money struct {
	m *money.Money
}

// New creates Money from minor units (paise for INR).
func New(minor int64, currencyCode string) *Money {
	return &Money{m: money.New(minor, currencyCode)}
}

// Zero returns a zero value for the currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// FromDecimal converts a decimal amount in major units to Money, rounding to
// the currency's smallest unit. An unknown code falls back to INR.
func FromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(INR)
	}
	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(minor, currency.Code)
}

// INRFromDecimal tags a decimal amount as Indian rupees.
func INRFromDecimal(amount decimal.Decimal) *Money {
	return FromDecimal(amount, INR)
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Decimal returns the value in major units.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Display renders the amount with its currency symbol.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// Add returns the sum, failing on mixed currencies.
func (m *Money) Add(other *Money) (*Money, error) {
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("cannot add %s to %s: %w", other.Currency(), m.Currency(), err)
	}
	return &Money{m: sum}, nil
}

// Sub returns the difference, failing on mixed currencies.
func (m *Money) Sub(other *Money) (*Money, error) {
	diff, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, fmt.Errorf("cannot subtract %s from %s: %w", other.Currency(), m.Currency(), err)
	}
	return &Money{m: diff}, nil
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// MarshalJSON renders the amount in major units plus a display string.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.Decimal().StringFixed(int32(m.m.Currency().Fraction)),
		Currency: m.Currency(),
		Display:  m.Display(),
	})
}

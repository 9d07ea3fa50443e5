// Package money provides the monetary amount type used across the service.
// Amounts are fixed to 2 decimal places (currency minor units); rounding is
// half-up, applied whenever a Money value is constructed.
package money

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is an immutable monetary amount with 2-decimal precision.
// The embedded decimal exposes comparison helpers (IsZero, IsNegative, Cmp).
type Money struct {
	decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// New rounds the given decimal to 2 places and wraps it.
func New(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// FromFloat converts a float amount, rounding to 2 places.
func FromFloat(amount float64) Money {
	return New(decimal.NewFromFloat(amount))
}

// FromString parses a decimal string such as "19.99".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return New(d), nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return New(m.Decimal.Add(other.Decimal))
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return New(m.Decimal.Sub(other.Decimal))
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// MarshalJSON renders the amount as a fixed 2-decimal string, e.g. "19.99".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts both string and number payloads.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value implements driver.Valuer for database writes.
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan implements sql.Scanner for database reads.
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String returns the fixed 2-decimal representation.
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

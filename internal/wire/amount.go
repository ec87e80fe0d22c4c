// Package wire holds the JSON shapes exchanged between the FMS server and
// its clients, and their conversion to core types.
package wire

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Afatsiawu/FMS/internal/core"
)

// Amount is a money value on the wire. It encodes as a JSON number with two
// decimals and decodes numbers, numeric strings and null. Anything else,
// including amounts beyond core.MaxCents, decodes to an invalid Amount
// instead of failing the whole document.
type Amount struct {
	Cents int64
	Valid bool
	Raw   string // original text when Valid is false
}

func AmountOf(m core.Money) Amount { return Amount{Cents: m.Cents, Valid: true} }

// OptionalAmount maps a nil week cell to JSON null.
func OptionalAmount(m *core.Money) Amount {
	if m == nil {
		return Amount{}
	}
	return AmountOf(*m)
}

func (a Amount) Money() core.Money { return core.Money{Cents: a.Cents} }

// Ptr returns nil for a null or invalid amount.
func (a Amount) Ptr() *core.Money {
	if !a.Valid {
		return nil
	}
	m := a.Money()
	return &m
}

// IsNull reports whether the value was absent or JSON null.
func (a Amount) IsNull() bool { return !a.Valid && a.Raw == "" }

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(decimal.New(a.Cents, -2).StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Amount{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			a.Raw = text
			return nil
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil
		}
	}

	cents, err := core.ParseCents(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		a.Raw = text
		return nil
	}
	a.Cents = cents
	a.Valid = true
	return nil
}

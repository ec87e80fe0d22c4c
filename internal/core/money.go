// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and decimals and for rendering cents in Ghana cedis.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "₵"

var hundred = decimal.NewFromInt(100)

// MaxCents is the largest magnitude, in cents, an amount may have. It keeps
// amount * 77 inside int64 during the allocation split.
const MaxCents = math.MaxInt64 / 100

var maxCents = decimal.NewFromInt(MaxCents)

// CentsFromDecimal rounds d to cents, half away from zero. Amounts beyond
// MaxCents in either direction are rejected.
func CentsFromDecimal(d decimal.Decimal) (int64, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// ParseCents converts a decimal string to cents with half-up rounding.
//
// Examples:
//
//	ParseCents("12.34")  -> 1234, nil
//	ParseCents("12.345") -> 1235, nil (half-up)
//	ParseCents("-3")     -> -300, nil
//	ParseCents("1e20")   -> 0, ErrAmountOutOfRange
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return CentsFromDecimal(d)
}

// MoneyFromFloat converts a wire amount to cents, rounding half away from zero.
// Non-finite and out-of-range input yields zero.
func MoneyFromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}
	}
	cents, err := CentsFromDecimal(decimal.NewFromFloat(f))
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the amount in cedis.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Cedis returns the amount as a float64 for the JSON wire format.
// Use cents for calculations.
func (m Money) Cedis() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// String renders the amount as "₵1,234.56".
func (m Money) String() string {
	return FormatCedis(m.Cents)
}

// FormatCedis renders cents with the cedi sign, thousands separators and
// two decimals. Negative amounts get a leading minus.
func FormatCedis(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(CurrencySymbol)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	rem := cents % 100
	if rem < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rem, 10))
	return b.String()
}

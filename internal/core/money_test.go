package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"1.23", 123, nil},
		{"0.01", 1, nil},
		{"1.005", 101, nil}, // half-up rounding
		{"12.344", 1234, nil},
		{" 2.50 ", 250, nil},
		{"0", 0, nil},
		{"-1", -100, nil},
		{"922337203685477.58", MaxCents, nil},
		{"922337203685477.59", 0, ErrAmountOutOfRange},
		{"200000000000000000", 0, ErrAmountOutOfRange},
		{"-200000000000000000", 0, ErrAmountOutOfRange},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q: err = %v, want %v", tc.in, err, tc.err)
		}
		if got != tc.out {
			t.Fatalf("%q expected %d, got %d", tc.in, tc.out, got)
		}
	}
}

func TestMoneyValidateBounds(t *testing.T) {
	cases := []struct {
		cents int64
		ok    bool
	}{
		{1, true},
		{MaxCents, true},
		{0, false},
		{-5, false},
		{MaxCents + 1, false},
	}
	for _, tc := range cases {
		if err := (Money{Cents: tc.cents}).Validate(); (err == nil) != tc.ok {
			t.Errorf("Validate(%d) = %v, want ok=%v", tc.cents, err, tc.ok)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{100, 10000},
		{0.1 + 0.2, 30},
		{19.999, 2000},
		{2.675, 268},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{1e18, 0},
	}
	for _, tc := range cases {
		if got := MoneyFromFloat(tc.in).Cents; got != tc.out {
			t.Fatalf("%v expected %d cents, got %d", tc.in, tc.out, got)
		}
	}
}

func TestFormatCedis(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{0, "₵0.00"},
		{5, "₵0.05"},
		{2300, "₵23.00"},
		{123456, "₵1,234.56"},
		{100000000, "₵1,000,000.00"},
		{-770, "-₵7.70"},
	}
	for _, tc := range cases {
		if got := FormatCedis(tc.cents); got != tc.out {
			t.Fatalf("%d expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

func TestMoneyCedis(t *testing.T) {
	if got := (Money{Cents: 770}).Cedis(); got != 7.7 {
		t.Fatalf("expected 7.7, got %v", got)
	}
}

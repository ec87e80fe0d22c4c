package allocation

import (
	"math"
	"testing"

	"github.com/Afatsiawu/FMS/internal/core"
)

func TestAllocate(t *testing.T) {
	cases := []struct {
		cents           int64
		local, district int64
	}{
		{10000, 2300, 7700},
		{1000, 230, 770},
		{0, 0, 0},
		{1, 0, 1},
		{2, 0, 2},    // 0.46 -> 0, 1.54 -> 2
		{3, 1, 2},    // 0.69 -> 1, 2.31 -> 2
		{50, 12, 39}, // 11.5 -> 12, 38.5 -> 39, sum is one cent over
		{12345, 2839, 9506},
	}
	for _, tc := range cases {
		s := Allocate(core.Money{Cents: tc.cents})
		if s.Local.Cents != tc.local || s.District.Cents != tc.district {
			t.Fatalf("%d expected %d/%d, got %d/%d", tc.cents, tc.local, tc.district, s.Local.Cents, s.District.Cents)
		}
	}
}

func TestAllocateSumWithinOneCent(t *testing.T) {
	for c := int64(0); c <= 20000; c++ {
		s := Allocate(core.Money{Cents: c})
		diff := s.Total().Cents - c
		if diff < -1 || diff > 1 {
			t.Fatalf("%d cents split into %d/%d, off by %d", c, s.Local.Cents, s.District.Cents, diff)
		}
	}
}

func TestAllocateLargeAmounts(t *testing.T) {
	for _, c := range []int64{
		core.MaxCents,
		core.MaxCents - 1,
		math.MaxInt64 / 77,
		math.MaxInt64,
	} {
		s := Allocate(core.Money{Cents: c})
		if s.Local.Cents < 0 || s.District.Cents < 0 {
			t.Fatalf("%d cents gave a negative share %+v", c, s)
		}
		diff := s.Local.Cents - c + s.District.Cents
		if diff < -1 || diff > 1 {
			t.Fatalf("%d cents split into %d/%d, off by %d", c, s.Local.Cents, s.District.Cents, diff)
		}
	}
}

func TestAllocateNegativeMirrorsPositive(t *testing.T) {
	pos := Allocate(core.Money{Cents: 50})
	neg := Allocate(core.Money{Cents: -50})
	if neg.Local.Cents != -pos.Local.Cents || neg.District.Cents != -pos.District.Cents {
		t.Fatalf("expected mirrored split, got %+v", neg)
	}
}

func TestAllocateFloat(t *testing.T) {
	s := AllocateFloat(100)
	if s.Local.Cents != 2300 || s.District.Cents != 7700 {
		t.Fatalf("expected 2300/7700, got %+v", s)
	}
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if s := AllocateFloat(f); s.Total().Cents != 0 {
			t.Fatalf("%v expected zero split, got %+v", f, s)
		}
	}
}

func TestForIncome(t *testing.T) {
	cases := []struct {
		name string
		in   core.Income
		want Split
	}{
		{
			name: "plain income is local",
			in:   core.Income{Amount: core.Money{Cents: 5000}, Kind: core.PlainIncome},
			want: Split{Local: core.Money{Cents: 5000}},
		},
		{
			name: "tithe computed",
			in:   core.Income{Amount: core.Money{Cents: 10000}, Kind: core.TitheIncome},
			want: Split{Local: core.Money{Cents: 2300}, District: core.Money{Cents: 7700}},
		},
		{
			name: "offering uses stored split",
			in: core.Income{Amount: core.Money{Cents: 10000}, Kind: core.OfferingIncome,
				Local: core.Money{Cents: 2301}, District: core.Money{Cents: 7699}},
			want: Split{Local: core.Money{Cents: 2301}, District: core.Money{Cents: 7699}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ForIncome(tc.in); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

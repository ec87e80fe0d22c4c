// Package allocation splits tithe and offering money between the local
// church and the district.
package allocation

import (
	"math"

	"github.com/Afatsiawu/FMS/internal/core"
)

const (
	LocalPercent    = 23
	DistrictPercent = 77
)

// Split is the result of one allocation. Local and District are rounded
// independently, so their sum can be one cent away from the amount.
type Split struct {
	Local    core.Money
	District core.Money
}

// Total returns Local + District.
func (s Split) Total() core.Money {
	return s.Local.Add(s.District)
}

// Allocate splits amount 23/77 with half-up rounding on each part.
func Allocate(amount core.Money) Split {
	return Split{
		Local:    core.Money{Cents: percentOf(amount.Cents, LocalPercent)},
		District: core.Money{Cents: percentOf(amount.Cents, DistrictPercent)},
	}
}

// AllocateFloat allocates a wire amount in cedis. NaN and infinities are zero.
func AllocateFloat(amount float64) Split {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Split{}
	}
	return Allocate(core.MoneyFromFloat(amount))
}

// ForIncome returns the split for an income row. Tithe and offering rows use
// the stored portions when the store supplied them. Plain income is local.
func ForIncome(in core.Income) Split {
	if !in.Kind.IsAllocated() {
		return Split{Local: in.Amount}
	}
	if !in.Local.IsZero() || !in.District.IsZero() {
		return Split{Local: in.Local, District: in.District}
	}
	return Allocate(in.Amount)
}

// percentOf rounds half away from zero, which is half-up for the
// non-negative amounts the ledger holds. Whole cedis and the cent remainder
// are scaled apart so the product never leaves int64.
func percentOf(cents, pct int64) int64 {
	if cents < 0 {
		return -percentOf(-cents, pct)
	}
	return (cents/100)*pct + ((cents%100)*pct+50)/100
}

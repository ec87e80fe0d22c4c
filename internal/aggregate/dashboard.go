package aggregate

import (
	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
)

// DailyTotals are the dashboard figures of one day.
type DailyTotals struct {
	Day                core.Date
	LocalIncome        core.Money
	DistrictAllocation core.Money
	LocalExpenses      core.Money
	NationalExpenses   core.Money
	TotalExpenses      core.Money
	NetBalance         core.Money

	// Informational, never part of NetBalance.
	ManualDistrict core.Money
	AutoDistrict   core.Money
}

// Dashboard sums the records dated day. Local income is plain income plus
// the local portion of tithes and offerings. Total expenses are the local
// and national expenses plus the district portion of the day's tithes and
// offerings.
func Dashboard(s core.Snapshot, day core.Date, opts Options) DailyTotals {
	ch := opts.channelsFor(dashboardView)
	key := day.String()
	out := DailyTotals{Day: day}

	for _, in := range s.Income {
		if in.Date.String() != key {
			continue
		}
		if in.Kind.IsAllocated() && !ch.incomeRows {
			continue
		}
		split := allocation.ForIncome(in)
		out.LocalIncome = out.LocalIncome.Add(split.Local)
		out.DistrictAllocation = out.DistrictAllocation.Add(split.District)
	}

	if ch.ledger {
		for _, set := range [][]core.LedgerRecord{s.Tithes, s.Offerings} {
			for _, r := range set {
				if r.Date.String() != key {
					continue
				}
				split := allocation.Allocate(r.Sum())
				out.LocalIncome = out.LocalIncome.Add(split.Local)
				out.DistrictAllocation = out.DistrictAllocation.Add(split.District)
			}
		}
	}

	for _, e := range s.Expenses {
		if e.Date.String() != key {
			continue
		}
		switch e.Tier {
		case core.LocalExpense:
			out.LocalExpenses = out.LocalExpenses.Add(e.Amount)
		case core.NationalExpense:
			out.NationalExpenses = out.NationalExpenses.Add(e.Amount)
		case core.DistrictExpense:
			out.ManualDistrict = out.ManualDistrict.Add(e.Amount)
		}
	}
	for _, d := range s.AutoDistrict {
		if d.Date.String() == key {
			out.AutoDistrict = out.AutoDistrict.Add(d.DistrictAmount)
		}
	}

	out.TotalExpenses = out.LocalExpenses.Add(out.NationalExpenses).Add(out.DistrictAllocation)
	out.NetBalance = out.LocalIncome.Sub(out.TotalExpenses)
	return out
}

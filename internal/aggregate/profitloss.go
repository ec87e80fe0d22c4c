package aggregate

import (
	"strings"

	"github.com/Afatsiawu/FMS/internal/core"
)

// Categories of the profit and loss breakdowns.
const (
	TithesCategory           = "Tithes"
	OfferingsCategory        = "Offerings"
	NationalExpensesCategory = "National Expenses"
)

// legacyAllocationCategories were used by older clients to post the local
// share of tithes as plain income. They would double count the ledger.
var legacyAllocationCategories = map[string]bool{
	"23% (of tithe and offering)": true,
	"tithe":                       true,
	"offering":                    true,
}

type ProfitLoss struct {
	Range core.DateRange

	Revenue  []core.CategoryAmount
	Expenses []core.CategoryAmount

	TotalRevenue     core.Money
	LocalExpenses    core.Money
	NationalExpenses core.Money
	TotalExpenses    core.Money
	Net              core.Money

	// Reported for reference, never part of Net.
	ManualDistrict core.Money
	AutoDistrict   core.Money

	LocalExpenseTable    []ReportRow
	NationalExpenseTable []ReportRow

	Warnings []core.DataQualityWarning
}

// ProfitAndLoss builds the statement for r. Revenue is plain income plus
// the gross tithes and offerings; expenses are local plus national. The
// district allocation is not an expense of the local church here.
func ProfitAndLoss(s core.Snapshot, r core.DateRange, opts Options) ProfitLoss {
	ch := opts.channelsFor(profitLossView)
	pl := ProfitLoss{Range: r}
	revenue := newCategoryTotals()
	expenses := newCategoryTotals()

	for _, in := range s.Income {
		if !inWindow(r, in.Date) || in.Amount.Cents <= 0 {
			continue
		}
		switch {
		case !in.Kind.IsAllocated():
			if legacyAllocationCategories[strings.ToLower(strings.TrimSpace(in.Category))] {
				continue
			}
			revenue.add(in.Category, in.Amount)
		case ch.incomeRows:
			revenue.add(channelCategory(in.Kind), in.Amount)
		default:
			continue
		}
		pl.TotalRevenue = pl.TotalRevenue.Add(in.Amount)
	}

	if ch.ledger {
		for _, set := range []struct {
			category string
			records  []core.LedgerRecord
		}{{TithesCategory, s.Tithes}, {OfferingsCategory, s.Offerings}} {
			for _, rec := range set.records {
				gross := ledgerGross(rec)
				if gross.Cents <= 0 || !inWindow(r, rec.Date) {
					continue
				}
				revenue.add(set.category, gross)
				pl.TotalRevenue = pl.TotalRevenue.Add(gross)
			}
		}
		pl.Warnings = append(pl.Warnings, ledgerWarnings("tithe", s.Tithes)...)
		pl.Warnings = append(pl.Warnings, ledgerWarnings("offering", s.Offerings)...)
	}

	for _, e := range s.Expenses {
		if !inWindow(r, e.Date) {
			continue
		}
		switch e.Tier {
		case core.LocalExpense:
			expenses.add(e.Category, e.Amount)
			pl.LocalExpenses = pl.LocalExpenses.Add(e.Amount)
			pl.LocalExpenseTable = append(pl.LocalExpenseTable, expenseRow(e))
		case core.NationalExpense:
			pl.NationalExpenses = pl.NationalExpenses.Add(e.Amount)
			pl.NationalExpenseTable = append(pl.NationalExpenseTable, expenseRow(e))
		case core.DistrictExpense:
			pl.ManualDistrict = pl.ManualDistrict.Add(e.Amount)
		}
	}
	if pl.NationalExpenses.Cents > 0 {
		expenses.add(NationalExpensesCategory, pl.NationalExpenses)
	}
	for _, d := range s.AutoDistrict {
		if inWindow(r, d.Date) {
			pl.AutoDistrict = pl.AutoDistrict.Add(d.DistrictAmount)
		}
	}

	pl.Revenue = revenue.list()
	pl.Expenses = expenses.list()
	pl.TotalExpenses = pl.LocalExpenses.Add(pl.NationalExpenses)
	pl.Net = pl.TotalRevenue.Sub(pl.TotalExpenses)
	return pl
}

func channelCategory(k core.IncomeKind) string {
	if k == core.OfferingIncome {
		return OfferingsCategory
	}
	return TithesCategory
}

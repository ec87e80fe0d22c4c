package aggregate

import (
	"sort"
	"time"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/feed"
)

// Archive captures the whole active period: the profit and loss breakdowns
// and every transaction, newest first.
func Archive(s core.Snapshot, year int, opts Options, now time.Time) core.ArchivedPeriod {
	pl := ProfitAndLoss(s, core.DateRange{}, opts)
	out := core.ArchivedPeriod{
		Year:       year,
		Revenue:    pl.Revenue,
		Expenses:   pl.Expenses,
		ArchivedAt: now.UTC(),
	}

	for _, in := range s.Income {
		out.Transactions = append(out.Transactions, core.ArchivedTransaction{
			Date:        in.Date,
			Type:        incomeTransactionType(in.Kind),
			Category:    in.Category,
			Description: in.Description,
			Amount:      in.Amount,
		})
	}
	for _, set := range []struct {
		typ, category string
		records       []core.LedgerRecord
	}{{feed.TypeTithe, TithesCategory, s.Tithes}, {feed.TypeOffering, OfferingsCategory, s.Offerings}} {
		for _, rec := range set.records {
			gross := ledgerGross(rec)
			if gross.IsZero() {
				continue
			}
			out.Transactions = append(out.Transactions, core.ArchivedTransaction{
				Date:        rec.Date,
				Type:        set.typ,
				Category:    set.category,
				Description: rec.MemberName,
				Amount:      gross,
			})
		}
	}
	for _, e := range s.Expenses {
		out.Transactions = append(out.Transactions, core.ArchivedTransaction{
			Date:        e.Date,
			Type:        expenseTransactionType(e.Tier),
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	for _, d := range s.AutoDistrict {
		out.Transactions = append(out.Transactions, core.ArchivedTransaction{
			Date:        d.Date,
			Type:        feed.TypeDistrictExpense,
			Category:    d.Source,
			Description: d.Description,
			Amount:      d.DistrictAmount,
		})
	}

	sort.SliceStable(out.Transactions, func(i, j int) bool {
		return out.Transactions[i].Date.String() > out.Transactions[j].Date.String()
	})
	return out
}

func incomeTransactionType(k core.IncomeKind) string {
	switch k {
	case core.TitheIncome:
		return feed.TypeTithe
	case core.OfferingIncome:
		return feed.TypeOffering
	}
	return feed.TypeIncome
}

func expenseTransactionType(t core.ExpenseTier) string {
	switch t {
	case core.DistrictExpense:
		return feed.TypeDistrictExpense
	case core.NationalExpense:
		return feed.TypeNationalExpense
	}
	return feed.TypeExpense
}

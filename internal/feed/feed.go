// Package feed merges every record type into the recent transactions list.
package feed

import (
	"sort"
	"strings"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
)

// DefaultLimit is the feed length used when no limit is given.
const DefaultLimit = 10

const (
	TypeIncome           = "Income"
	TypeTithe            = "Tithe"
	TypeOffering         = "Offering"
	TypeTitheLocal       = "Tithe (Local)"
	TypeTitheDistrict    = "Tithe (District)"
	TypeOfferingLocal    = "Offering (Local)"
	TypeOfferingDistrict = "Offering (District)"
	TypeExpense          = "Expense"
	TypeDistrictExpense  = "District Expense"
	TypeNationalExpense  = "National Expense"
)

// Transaction is one feed row.
type Transaction struct {
	Date        core.Date
	Type        string
	Description string
	Amount      core.Money
	Status      string
	Source      string
	SourceID    int64
}

// Sources are the record sets the feed is built from.
type Sources struct {
	Income           []core.Income
	Tithes           []core.LedgerRecord
	Offerings        []core.LedgerRecord
	LocalExpenses    []core.Expense
	AutoDistrict     []core.AutoDistrictExpense
	NationalExpenses []core.Expense
}

// SourcesFromSnapshot picks the feed inputs out of a snapshot.
func SourcesFromSnapshot(s core.Snapshot) Sources {
	return Sources{
		Income:           s.Income,
		Tithes:           s.Tithes,
		Offerings:        s.Offerings,
		LocalExpenses:    s.ExpensesOf(core.LocalExpense),
		AutoDistrict:     s.AutoDistrict,
		NationalExpenses: s.ExpensesOf(core.NationalExpense),
	}
}

// Merge concatenates the sources, sorts them newest first and keeps the
// first limit rows. Rows with equal dates keep their concatenation order.
// A limit <= 0 means DefaultLimit. today stands in for missing ledger dates.
func Merge(src Sources, limit int, today core.Date) ([]Transaction, []core.DataQualityWarning) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var (
		out      []Transaction
		warnings []core.DataQualityWarning
	)

	for _, in := range src.Income {
		t := Transaction{
			Date:        in.Date,
			Type:        incomeType(in.Kind),
			Description: orDefault(in.Description, incomeType(in.Kind)),
			Amount:      in.Amount,
			Status:      core.StatusCompleted,
			Source:      "income",
			SourceID:    in.ID,
		}
		out = append(out, t)
	}

	for _, r := range src.Tithes {
		rows, w := expandLedger(r, "tithe", today)
		out = append(out, rows...)
		warnings = append(warnings, w...)
	}
	for _, r := range src.Offerings {
		rows, w := expandLedger(r, "offering", today)
		out = append(out, rows...)
		warnings = append(warnings, w...)
	}

	for _, e := range src.LocalExpenses {
		out = append(out, Transaction{
			Date:        e.Date,
			Type:        TypeExpense,
			Description: orDefault(e.Description, TypeExpense),
			Amount:      e.Amount,
			Status:      core.StatusCompleted,
			Source:      "expense",
			SourceID:    e.ID,
		})
	}
	for _, d := range src.AutoDistrict {
		out = append(out, Transaction{
			Date:        d.Date,
			Type:        TypeDistrictExpense,
			Description: orDefault(d.Description, "District Allocation"),
			Amount:      d.DistrictAmount,
			Status:      orDefault(d.Status, core.StatusCompleted),
			Source:      "district",
			SourceID:    d.ID,
		})
	}
	for _, e := range src.NationalExpenses {
		out = append(out, Transaction{
			Date:        e.Date,
			Type:        TypeNationalExpense,
			Description: orDefault(e.Description, "National Allocation"),
			Amount:      e.Amount,
			Status:      core.StatusCompleted,
			Source:      "national",
			SourceID:    e.ID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.String() > out[j].Date.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, warnings
}

// expandLedger turns a ledger record with a nonzero total into its local
// and district rows.
func expandLedger(r core.LedgerRecord, kind string, today core.Date) ([]Transaction, []core.DataQualityWarning) {
	total := r.Sum()
	if total.IsZero() {
		return nil, nil
	}
	var warnings []core.DataQualityWarning
	date := r.Date
	if date.IsZero() {
		date = today
		warnings = append(warnings, core.DataQualityWarning{
			Source: kind, RecordID: r.ID, Field: "date", Detail: "missing, using today",
		})
	}

	split := allocation.Allocate(total)
	var name, label, localType, districtType string
	if kind == "tithe" {
		label, localType, districtType = TypeTithe, TypeTitheLocal, TypeTitheDistrict
		name = orDefault(r.MemberName, "Member")
	} else {
		label, localType, districtType = TypeOffering, TypeOfferingLocal, TypeOfferingDistrict
		name = r.MemberName
		if r.IsGeneralOffering() {
			name = "General"
		}
		name = orDefault(name, "Member")
	}

	return []Transaction{
		{
			Date:        date,
			Type:        localType,
			Description: label + " - " + name,
			Amount:      split.Local,
			Status:      core.StatusCompleted,
			Source:      kind,
			SourceID:    r.ID,
		},
		{
			Date:        date,
			Type:        districtType,
			Description: label + " Allocation - " + name,
			Amount:      split.District,
			Status:      core.StatusAllocated,
			Source:      kind,
			SourceID:    r.ID,
		},
	}, warnings
}

func incomeType(k core.IncomeKind) string {
	switch k {
	case core.TitheIncome:
		return TypeTithe
	case core.OfferingIncome:
		return TypeOffering
	}
	return TypeIncome
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

package aggregate

import (
	"strings"
	"time"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
)

type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekly, Monthly, Yearly:
		return p, nil
	}
	return "", core.NewValidationError("period", "must be weekly, monthly or yearly")
}

// PeriodRange returns the window of p around anchor: Sunday to the anchor
// day for weekly, the calendar month for monthly, the calendar year for
// yearly.
func PeriodRange(p Period, anchor core.Date) core.DateRange {
	t := anchor.Time
	switch p {
	case Weekly:
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return core.DateRange{Start: core.DateOf(start), End: anchor}
	case Monthly:
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return core.DateRange{Start: core.DateOf(first), End: core.DateOf(first.AddDate(0, 1, -1))}
	default:
		return core.DateRange{Start: core.NewDate(t.Year(), 1, 1), End: core.NewDate(t.Year(), 12, 31)}
	}
}

// ReportRow is one line of a report or profit and loss table.
type ReportRow struct {
	ID          int64
	Date        core.Date
	Category    string
	Description string
	Amount      core.Money
	Local       core.Money
	Type        string
}

type Report struct {
	Period        Period
	Range         core.DateRange
	TotalIncome   core.Money
	TotalExpenses core.Money
	NetBalance    core.Money
	Income        []ReportRow
	Expenses      []ReportRow
}

// PeriodReport totals the gross income and the local plus national
// expenses inside r.
func PeriodReport(s core.Snapshot, p Period, r core.DateRange, opts Options) Report {
	ch := opts.channelsFor(reportView)
	rep := Report{Period: p, Range: r}

	for _, in := range s.Income {
		if !inWindow(r, in.Date) {
			continue
		}
		if in.Kind.IsAllocated() && !ch.incomeRows {
			continue
		}
		rep.Income = append(rep.Income, ReportRow{
			ID:          in.ID,
			Date:        in.Date,
			Category:    in.Category,
			Description: in.Description,
			Amount:      in.Amount,
			Local:       allocation.ForIncome(in).Local,
			Type:        in.Kind.String(),
		})
		rep.TotalIncome = rep.TotalIncome.Add(in.Amount)
	}
	if ch.ledger {
		rows := ledgerRows(s.Tithes, "Tithes", "Tithe", r)
		rows = append(rows, ledgerRows(s.Offerings, "Offerings", "Offering", r)...)
		for _, row := range rows {
			rep.Income = append(rep.Income, row)
			rep.TotalIncome = rep.TotalIncome.Add(row.Amount)
		}
	}

	for _, tier := range []core.ExpenseTier{core.LocalExpense, core.NationalExpense} {
		for _, e := range s.ExpensesOf(tier) {
			if !inWindow(r, e.Date) {
				continue
			}
			rep.Expenses = append(rep.Expenses, expenseRow(e))
			rep.TotalExpenses = rep.TotalExpenses.Add(e.Amount)
		}
	}
	rep.NetBalance = rep.TotalIncome.Sub(rep.TotalExpenses)
	return rep
}

func ledgerRows(records []core.LedgerRecord, category, label string, r core.DateRange) []ReportRow {
	var out []ReportRow
	for _, rec := range records {
		gross := ledgerGross(rec)
		if gross.IsZero() || !inWindow(r, rec.Date) {
			continue
		}
		name := rec.MemberName
		if rec.IsGeneralOffering() {
			name = "General"
		}
		out = append(out, ReportRow{
			ID:          rec.ID,
			Date:        rec.Date,
			Category:    category,
			Description: label + " - " + name,
			Amount:      gross,
			Local:       allocation.Allocate(gross).Local,
			Type:        strings.ToLower(label),
		})
	}
	return out
}

func expenseRow(e core.Expense) ReportRow {
	return ReportRow{
		ID:          e.ID,
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Local:       e.Amount,
		Type:        string(e.Tier),
	}
}

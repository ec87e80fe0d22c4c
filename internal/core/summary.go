package core

import "time"

// CategoryAmount is one line of a category breakdown.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// DateRange is an inclusive day window. A zero bound is open.
type DateRange struct {
	Start Date
	End   Date
}

// Contains compares YYYY-MM-DD strings, so only day granularity matters.
func (r DateRange) Contains(d Date) bool {
	s := d.String()
	if s == "" {
		return false
	}
	if !r.Start.IsZero() && s < r.Start.String() {
		return false
	}
	if !r.End.IsZero() && s > r.End.String() {
		return false
	}
	return true
}

// IsOpen reports whether the range has no bounds at all.
func (r DateRange) IsOpen() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Snapshot is the complete set of source records one view is computed from.
// It is fetched per request and never shared between requests.
type Snapshot struct {
	Income       []Income
	Tithes       []LedgerRecord
	Offerings    []LedgerRecord
	Expenses     []Expense // every tier
	AutoDistrict []AutoDistrictExpense
	Warnings     []DataQualityWarning
}

// ExpensesOf returns the expenses of one tier, in snapshot order.
func (s Snapshot) ExpensesOf(tier ExpenseTier) []Expense {
	var out []Expense
	for _, e := range s.Expenses {
		if e.Tier == tier {
			out = append(out, e)
		}
	}
	return out
}

// ArchivedTransaction is one row of an archived period.
type ArchivedTransaction struct {
	Date        Date
	Type        string
	Category    string
	Description string
	Amount      Money
}

// ArchivedPeriod is the immutable record of a closed year.
type ArchivedPeriod struct {
	Year         int
	Revenue      []CategoryAmount
	Expenses     []CategoryAmount
	Transactions []ArchivedTransaction
	ArchivedAt   time.Time
}

// TotalRevenue sums the revenue breakdown.
func (p ArchivedPeriod) TotalRevenue() Money {
	var m Money
	for _, c := range p.Revenue {
		m = m.Add(c.Amount)
	}
	return m
}

// TotalExpenses sums the expense breakdown.
func (p ArchivedPeriod) TotalExpenses() Money {
	var m Money
	for _, c := range p.Expenses {
		m = m.Add(c.Amount)
	}
	return m
}

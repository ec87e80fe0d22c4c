package wire

import (
	"sort"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/feed"
	"github.com/Afatsiawu/FMS/internal/ledger"
)

type Dashboard struct {
	Date               string            `json:"date"`
	LocalIncome        Amount            `json:"local_income"`
	DistrictAllocation Amount            `json:"district_allocation"`
	LocalExpenses      Amount            `json:"local_expenses"`
	NationalExpenses   Amount            `json:"national_expenses"`
	TotalExpenses      Amount            `json:"total_expenses"`
	NetBalance         Amount            `json:"net_balance"`
	ManualDistrict     Amount            `json:"manual_district"`
	AutoDistrict       Amount            `json:"auto_district"`
	Display            map[string]string `json:"display"`
}

func FromDailyTotals(d aggregate.DailyTotals) Dashboard {
	return Dashboard{
		Date:               d.Day.String(),
		LocalIncome:        AmountOf(d.LocalIncome),
		DistrictAllocation: AmountOf(d.DistrictAllocation),
		LocalExpenses:      AmountOf(d.LocalExpenses),
		NationalExpenses:   AmountOf(d.NationalExpenses),
		TotalExpenses:      AmountOf(d.TotalExpenses),
		NetBalance:         AmountOf(d.NetBalance),
		ManualDistrict:     AmountOf(d.ManualDistrict),
		AutoDistrict:       AmountOf(d.AutoDistrict),
		Display: map[string]string{
			"local_income":        d.LocalIncome.String(),
			"district_allocation": d.DistrictAllocation.String(),
			"local_expenses":      d.LocalExpenses.String(),
			"national_expenses":   d.NationalExpenses.String(),
			"total_expenses":      d.TotalExpenses.String(),
			"net_balance":         d.NetBalance.String(),
		},
	}
}

type ReportRow struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	LocalAmount Amount `json:"local_amount"`
	Type        string `json:"type"`
}

type Report struct {
	Period        string      `json:"period"`
	StartDate     string      `json:"start_date"`
	EndDate       string      `json:"end_date"`
	TotalIncome   Amount      `json:"total_income"`
	TotalExpenses Amount      `json:"total_expenses"`
	NetBalance    Amount      `json:"net_balance"`
	Income        []ReportRow `json:"income"`
	Expenses      []ReportRow `json:"expenses"`
}

func fromRows(rows []aggregate.ReportRow) []ReportRow {
	out := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReportRow{
			ID:          r.ID,
			Date:        r.Date.String(),
			Category:    r.Category,
			Description: r.Description,
			Amount:      AmountOf(r.Amount),
			LocalAmount: AmountOf(r.Local),
			Type:        r.Type,
		})
	}
	return out
}

func FromReport(r aggregate.Report) Report {
	return Report{
		Period:        string(r.Period),
		StartDate:     r.Range.Start.String(),
		EndDate:       r.Range.End.String(),
		TotalIncome:   AmountOf(r.TotalIncome),
		TotalExpenses: AmountOf(r.TotalExpenses),
		NetBalance:    AmountOf(r.NetBalance),
		Income:        fromRows(r.Income),
		Expenses:      fromRows(r.Expenses),
	}
}

type CategoryLine struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

type Warning struct {
	Source   string `json:"source"`
	RecordID int64  `json:"record_id"`
	Field    string `json:"field"`
	Detail   string `json:"detail"`
}

type ProfitLoss struct {
	StartDate            string         `json:"start_date,omitempty"`
	EndDate              string         `json:"end_date,omitempty"`
	Revenue              []CategoryLine `json:"revenue"`
	Expenses             []CategoryLine `json:"expenses"`
	TotalRevenue         Amount         `json:"total_revenue"`
	LocalExpenses        Amount         `json:"local_expenses"`
	NationalExpenses     Amount         `json:"national_expenses"`
	TotalExpenses        Amount         `json:"total_expenses"`
	Net                  Amount         `json:"net"`
	ManualDistrict       Amount         `json:"manual_district"`
	AutoDistrict         Amount         `json:"auto_district"`
	LocalExpenseTable    []ReportRow    `json:"local_expense_table"`
	NationalExpenseTable []ReportRow    `json:"national_expense_table"`
	Warnings             []Warning      `json:"warnings,omitempty"`
}

func fromCategories(cs []core.CategoryAmount) []CategoryLine {
	out := make([]CategoryLine, 0, len(cs))
	for _, c := range cs {
		out = append(out, CategoryLine{Name: c.Name, Amount: AmountOf(c.Amount)})
	}
	return out
}

func FromWarnings(ws []core.DataQualityWarning) []Warning {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Source: w.Source, RecordID: w.RecordID, Field: w.Field, Detail: w.Detail})
	}
	return out
}

func FromProfitLoss(pl aggregate.ProfitLoss) ProfitLoss {
	return ProfitLoss{
		StartDate:            pl.Range.Start.String(),
		EndDate:              pl.Range.End.String(),
		Revenue:              fromCategories(pl.Revenue),
		Expenses:             fromCategories(pl.Expenses),
		TotalRevenue:         AmountOf(pl.TotalRevenue),
		LocalExpenses:        AmountOf(pl.LocalExpenses),
		NationalExpenses:     AmountOf(pl.NationalExpenses),
		TotalExpenses:        AmountOf(pl.TotalExpenses),
		Net:                  AmountOf(pl.Net),
		ManualDistrict:       AmountOf(pl.ManualDistrict),
		AutoDistrict:         AmountOf(pl.AutoDistrict),
		LocalExpenseTable:    fromRows(pl.LocalExpenseTable),
		NationalExpenseTable: fromRows(pl.NationalExpenseTable),
		Warnings:             FromWarnings(pl.Warnings),
	}
}

type Transaction struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	SourceID    int64  `json:"source_id"`
}

func FromTransactions(ts []feed.Transaction) []Transaction {
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		out = append(out, Transaction{
			Date:        t.Date.String(),
			Type:        t.Type,
			Description: t.Description,
			Amount:      AmountOf(t.Amount),
			Status:      t.Status,
			Source:      t.Source,
			SourceID:    t.SourceID,
		})
	}
	return out
}

type MonthView struct {
	Month           int       `json:"month"`
	Members         []Tithe   `json:"members"`
	GeneralOffering *Offering `json:"general_offering"`
}

func FromMonthView(v ledger.MonthView) MonthView {
	out := MonthView{Month: v.Month, Members: make([]Tithe, 0, len(v.Members))}
	for _, m := range v.Members {
		out.Members = append(out.Members, FromTithe(m))
	}
	if v.GeneralOffering != nil {
		o := FromOffering(*v.GeneralOffering)
		out.GeneralOffering = &o
	}
	return out
}

type HistoricalYears struct {
	Years []int `json:"years"`
}

type HistoricalPL struct {
	Revenue  map[string]Amount `json:"revenue"`
	Expenses map[string]Amount `json:"expenses"`
}

type HistoricalTransaction struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
}

type HistoricalData struct {
	Year         int                     `json:"year"`
	ArchivedAt   time.Time               `json:"archived_at"`
	PL           HistoricalPL            `json:"pl"`
	Transactions []HistoricalTransaction `json:"transactions"`
}

func categoryMap(cs []core.CategoryAmount) map[string]Amount {
	out := make(map[string]Amount, len(cs))
	for _, c := range cs {
		out[c.Name] = AmountOf(c.Amount)
	}
	return out
}

func FromArchivedPeriod(ap core.ArchivedPeriod) HistoricalData {
	out := HistoricalData{
		Year:         ap.Year,
		ArchivedAt:   ap.ArchivedAt,
		PL:           HistoricalPL{Revenue: categoryMap(ap.Revenue), Expenses: categoryMap(ap.Expenses)},
		Transactions: make([]HistoricalTransaction, 0, len(ap.Transactions)),
	}
	for _, t := range ap.Transactions {
		out.Transactions = append(out.Transactions, HistoricalTransaction{
			Date:        t.Date.String(),
			Type:        t.Type,
			Category:    t.Category,
			Description: t.Description,
			Amount:      AmountOf(t.Amount),
		})
	}
	return out
}

func sortedCategories(d *Decoder, section string, year int, m map[string]Amount) []core.CategoryAmount {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]core.CategoryAmount, 0, len(names))
	for _, name := range names {
		out = append(out, core.CategoryAmount{Name: name, Amount: d.amount(section, int64(year), name, m[name])})
	}
	return out
}

// ArchivedPeriod converts a historical document back to core. Category
// order is not carried on the wire, so categories come back sorted by name.
func (d *Decoder) ArchivedPeriod(h HistoricalData) core.ArchivedPeriod {
	ap := core.ArchivedPeriod{
		Year:       h.Year,
		ArchivedAt: h.ArchivedAt,
		Revenue:    sortedCategories(d, "archive_revenue", h.Year, h.PL.Revenue),
		Expenses:   sortedCategories(d, "archive_expenses", h.Year, h.PL.Expenses),
	}
	for _, t := range h.Transactions {
		ap.Transactions = append(ap.Transactions, core.ArchivedTransaction{
			Date:        d.date("archive", int64(h.Year), t.Date),
			Type:        t.Type,
			Category:    t.Category,
			Description: t.Description,
			Amount:      d.amount("archive", int64(h.Year), "amount", t.Amount),
		})
	}
	return ap
}

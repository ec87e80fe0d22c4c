package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/feed"
	"github.com/Afatsiawu/FMS/internal/ledger"
	"github.com/Afatsiawu/FMS/internal/services"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dateOrNA(d core.Date) string {
	if d.IsZero() {
		return "N/A"
	}
	return d.String()
}

func renderDashboard(w io.Writer, t aggregate.DailyTotals) error {
	tw := table(w)
	fmt.Fprintf(tw, "Dashboard\t%s\n", dateOrNA(t.Day))
	fmt.Fprintf(tw, "Local income\t%s\n", t.LocalIncome)
	fmt.Fprintf(tw, "District allocation\t%s\n", t.DistrictAllocation)
	fmt.Fprintf(tw, "Local expenses\t%s\n", t.LocalExpenses)
	fmt.Fprintf(tw, "National expenses\t%s\n", t.NationalExpenses)
	fmt.Fprintf(tw, "Total expenses\t%s\n", t.TotalExpenses)
	fmt.Fprintf(tw, "Net balance\t%s\n", t.NetBalance)
	fmt.Fprintf(tw, "District (manual)\t%s\n", t.ManualDistrict)
	fmt.Fprintf(tw, "District (auto)\t%s\n", t.AutoDistrict)
	return tw.Flush()
}

func renderRows(tw *tabwriter.Writer, rows []aggregate.ReportRow) {
	if len(rows) == 0 {
		fmt.Fprintln(tw, "  (none)")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", dateOrNA(r.Date), r.Type, r.Category, r.Description, r.Amount)
	}
}

func renderReport(w io.Writer, r aggregate.Report) error {
	tw := table(w)
	fmt.Fprintf(tw, "%s report\t%s to %s\n", r.Period, dateOrNA(r.Range.Start), dateOrNA(r.Range.End))
	fmt.Fprintf(tw, "Total income\t%s\n", r.TotalIncome)
	fmt.Fprintf(tw, "Total expenses\t%s\n", r.TotalExpenses)
	fmt.Fprintf(tw, "Net balance\t%s\n", r.NetBalance)
	fmt.Fprintln(tw, "Income")
	renderRows(tw, r.Income)
	fmt.Fprintln(tw, "Expenses")
	renderRows(tw, r.Expenses)
	return tw.Flush()
}

func renderCategories(tw *tabwriter.Writer, cats []core.CategoryAmount) {
	for _, c := range cats {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Amount)
	}
}

func renderProfitLoss(w io.Writer, pl aggregate.ProfitLoss) error {
	tw := table(w)
	fmt.Fprintf(tw, "Profit and Loss\t%s to %s\n", dateOrNA(pl.Range.Start), dateOrNA(pl.Range.End))
	fmt.Fprintln(tw, "Revenue")
	renderCategories(tw, pl.Revenue)
	fmt.Fprintf(tw, "Total revenue\t%s\n", pl.TotalRevenue)
	fmt.Fprintln(tw, "Expenses")
	renderCategories(tw, pl.Expenses)
	fmt.Fprintf(tw, "Local expenses\t%s\n", pl.LocalExpenses)
	fmt.Fprintf(tw, "National expenses\t%s\n", pl.NationalExpenses)
	fmt.Fprintf(tw, "Total expenses\t%s\n", pl.TotalExpenses)
	fmt.Fprintf(tw, "Net\t%s\n", pl.Net)
	fmt.Fprintf(tw, "District (manual, reference)\t%s\n", pl.ManualDistrict)
	fmt.Fprintf(tw, "District (auto, reference)\t%s\n", pl.AutoDistrict)
	return tw.Flush()
}

func renderFeed(w io.Writer, txs []feed.Transaction) error {
	tw := table(w)
	fmt.Fprintln(tw, "DATE\tTYPE\tDESCRIPTION\tAMOUNT\tSTATUS")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", dateOrNA(t.Date), t.Type, t.Description, t.Amount, t.Status)
	}
	return tw.Flush()
}

func weekCell(m *core.Money) string {
	if m == nil {
		return "-"
	}
	return m.String()
}

func ledgerLine(tw *tabwriter.Writer, r core.LedgerRecord) {
	fmt.Fprintf(tw, "%s", r.MemberName)
	for i := 1; i <= core.WeeksPerMonth; i++ {
		fmt.Fprintf(tw, "\t%s", weekCell(r.Week(i)))
	}
	fmt.Fprintf(tw, "\t%s\n", r.Sum())
}

func renderMonth(w io.Writer, v ledger.MonthView) error {
	tw := table(w)
	fmt.Fprintf(tw, "%s\n", services.MonthName(v.Month))
	fmt.Fprintln(tw, "MEMBER\tW1\tW2\tW3\tW4\tW5\tTOTAL")
	for _, r := range v.Members {
		ledgerLine(tw, r)
	}
	if v.GeneralOffering != nil {
		ledgerLine(tw, *v.GeneralOffering)
	}
	return tw.Flush()
}

func renderDistrict(w io.Writer, entries []core.DistrictLedgerEntry) error {
	tw := table(w)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tSTATUS\tSOURCE")
	for _, e := range entries {
		source := "manual"
		if e.IsAuto {
			source = "auto"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", dateOrNA(e.Date), e.Description, e.Amount, e.Status, source)
	}
	return tw.Flush()
}

func renderYears(w io.Writer, years []int) error {
	if len(years) == 0 {
		_, err := fmt.Fprintln(w, "No archived years")
		return err
	}
	for _, y := range years {
		if _, err := fmt.Fprintln(w, y); err != nil {
			return err
		}
	}
	return nil
}

func renderArchive(w io.Writer, ap core.ArchivedPeriod) error {
	tw := table(w)
	fmt.Fprintf(tw, "Archive\t%d\n", ap.Year)
	fmt.Fprintln(tw, "Revenue")
	renderCategories(tw, ap.Revenue)
	fmt.Fprintf(tw, "Total revenue\t%s\n", ap.TotalRevenue())
	fmt.Fprintln(tw, "Expenses")
	renderCategories(tw, ap.Expenses)
	fmt.Fprintf(tw, "Total expenses\t%s\n", ap.TotalExpenses())
	fmt.Fprintf(tw, "Net\t%s\n", ap.TotalRevenue().Sub(ap.TotalExpenses()))
	fmt.Fprintln(tw, "Transactions")
	for _, t := range ap.Transactions {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", dateOrNA(t.Date), t.Type, t.Category, t.Description, t.Amount)
	}
	return tw.Flush()
}

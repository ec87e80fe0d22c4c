// Package export renders the active period as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetIncome    = "Income"
	SheetTithes    = "Tithes"
	SheetOfferings = "Offerings"
	SheetExpenses  = "Expenses"
	SheetDistrict  = "District"
	SheetPL        = "Profit and Loss"
)

type sheet struct {
	name string
	rows [][]any
}

// Workbook builds one sheet per record type plus the profit and loss
// statement. The caller closes the returned file.
func Workbook(s core.Snapshot, district []core.DistrictLedgerEntry, pl aggregate.ProfitLoss) (*excelize.File, error) {
	sheets := []sheet{
		{SheetIncome, incomeRows(s.Income)},
		{SheetTithes, ledgerRows(s.Tithes)},
		{SheetOfferings, ledgerRows(s.Offerings)},
		{SheetExpenses, expenseRows(s.Expenses)},
		{SheetDistrict, districtRows(district)},
		{SheetPL, profitLossRows(pl)},
	}

	f := excelize.NewFile()
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", sh.name, err)
		}
		if err := writeRows(f, sh); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, s core.Snapshot, district []core.DistrictLedgerEntry, pl aggregate.ProfitLoss) error {
	f, err := Workbook(s, district, pl)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sh sheet) error {
	for i, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sh.name, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sh.name, i+1, err)
		}
	}
	return nil
}

func incomeRows(income []core.Income) [][]any {
	rows := [][]any{{"ID", "Date", "Category", "Description", "Type", "Amount", "Local", "District"}}
	for _, in := range income {
		split := allocation.ForIncome(in)
		rows = append(rows, []any{
			in.ID, in.Date.String(), in.Category, in.Description, in.Kind.String(),
			in.Amount.Cedis(), split.Local.Cedis(), split.District.Cedis(),
		})
	}
	return rows
}

func ledgerRows(records []core.LedgerRecord) [][]any {
	header := []any{"ID", "Member", "Member ID", "Month", "Date"}
	for w := 1; w <= core.WeeksPerMonth; w++ {
		header = append(header, fmt.Sprintf("Week %d", w))
	}
	header = append(header, "Total", "Local", "District")

	rows := [][]any{header}
	for _, r := range records {
		row := []any{r.ID, r.MemberName, r.MemberID, r.Month, r.Date.String()}
		for _, w := range r.Weeks {
			if w == nil {
				row = append(row, "")
				continue
			}
			row = append(row, w.Cedis())
		}
		split := allocation.Allocate(r.Total)
		row = append(row, r.Total.Cedis(), split.Local.Cedis(), split.District.Cedis())
		rows = append(rows, row)
	}
	return rows
}

func expenseRows(expenses []core.Expense) [][]any {
	rows := [][]any{{"ID", "Date", "Type", "Category", "Description", "Amount"}}
	for _, e := range expenses {
		rows = append(rows, []any{e.ID, e.Date.String(), string(e.Tier), e.Category, e.Description, e.Amount.Cedis()})
	}
	return rows
}

func districtRows(entries []core.DistrictLedgerEntry) [][]any {
	rows := [][]any{{"ID", "Date", "Description", "Amount", "Status", "Auto"}}
	for _, e := range entries {
		rows = append(rows, []any{e.ID, e.Date.String(), e.Description, e.Amount.Cedis(), e.Status, e.IsAuto})
	}
	return rows
}

func profitLossRows(pl aggregate.ProfitLoss) [][]any {
	rows := [][]any{
		{"Profit and Loss", pl.Range.Start.String(), pl.Range.End.String()},
		{},
		{"Revenue"},
	}
	for _, c := range pl.Revenue {
		rows = append(rows, []any{c.Name, c.Amount.Cedis()})
	}
	rows = append(rows, []any{"Total Revenue", pl.TotalRevenue.Cedis()}, []any{}, []any{"Expenses"})
	for _, c := range pl.Expenses {
		rows = append(rows, []any{c.Name, c.Amount.Cedis()})
	}
	rows = append(rows,
		[]any{"Total Expenses", pl.TotalExpenses.Cedis()},
		[]any{"Net", pl.Net.Cedis()},
		[]any{},
		[]any{"District (manual)", pl.ManualDistrict.Cedis()},
		[]any{"District (auto)", pl.AutoDistrict.Cedis()},
	)
	return rows
}

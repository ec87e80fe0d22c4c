package wire

import (
	"fmt"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
)

type Income struct {
	ID             int64  `json:"id"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Amount         Amount `json:"amount"`
	Date           string `json:"date"`
	IsTithe        bool   `json:"is_tithe"`
	IsOffering     bool   `json:"is_offering"`
	LocalAmount    Amount `json:"local_amount"`
	DistrictAmount Amount `json:"district_amount"`
}

type IncomeTotals struct {
	TotalAmount   Amount `json:"total_amount"`
	TotalLocal    Amount `json:"total_local"`
	TotalDistrict Amount `json:"total_district"`
}

type IncomeList struct {
	Success bool         `json:"success"`
	Data    []Income     `json:"data"`
	Totals  IncomeTotals `json:"totals"`
	Count   int          `json:"count"`
}

// Tithe is one member month. Week cells are null when unpaid.
type Tithe struct {
	ID             int64  `json:"id"`
	MemberName     string `json:"member_name"`
	MemberID       string `json:"member_id"`
	Month          int    `json:"month"`
	Date           string `json:"date"`
	Week1          Amount `json:"week1_amount"`
	Week2          Amount `json:"week2_amount"`
	Week3          Amount `json:"week3_amount"`
	Week4          Amount `json:"week4_amount"`
	Week5          Amount `json:"week5_amount"`
	TotalAmount    Amount `json:"total_amount"`
	DistrictAmount Amount `json:"district_amount"`
	LocalAmount    Amount `json:"local_amount"`
}

type TitheTotals struct {
	TotalTithes   Amount `json:"total_tithes"`
	TotalDistrict Amount `json:"total_district"`
	TotalLocal    Amount `json:"total_local"`
}

type TitheList struct {
	Success bool        `json:"success"`
	Data    []Tithe     `json:"data"`
	Totals  TitheTotals `json:"totals"`
	Count   int         `json:"count"`
}

type Offering struct {
	ID         int64  `json:"id"`
	MemberName string `json:"memberName"`
	MemberID   string `json:"memberId"`
	Month      int    `json:"month"`
	Week1      Amount `json:"week1"`
	Week2      Amount `json:"week2"`
	Week3      Amount `json:"week3"`
	Week4      Amount `json:"week4"`
	Week5      Amount `json:"week5"`
	Total      Amount `json:"total"`
	Date       string `json:"date"`
}

type Expense struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Date        string `json:"date"`
	ExpenseType string `json:"expense_type"`
}

type DistrictExpense struct {
	ID             int64  `json:"id"`
	Source         string `json:"source"`
	SourceRef      string `json:"sourceRef,omitempty"`
	Description    string `json:"description"`
	OriginalAmount Amount `json:"originalAmount"`
	DistrictAmount Amount `json:"districtAmount"`
	Date           string `json:"date"`
	Status         string `json:"status"`
}

type DistrictLedgerEntry struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Status      string `json:"status"`
	IsAuto      bool   `json:"isAuto"`
}

type InventoryItem struct {
	ID        int64  `json:"id"`
	ItemName  string `json:"itemName"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
	DateAdded string `json:"dateAdded"`
}

// ---- core -> wire ----

func FromIncome(in core.Income) Income {
	split := allocation.ForIncome(in)
	return Income{
		ID:             in.ID,
		Category:       in.Category,
		Description:    in.Description,
		Amount:         AmountOf(in.Amount),
		Date:           in.Date.String(),
		IsTithe:        in.Kind == core.TitheIncome,
		IsOffering:     in.Kind == core.OfferingIncome,
		LocalAmount:    AmountOf(split.Local),
		DistrictAmount: AmountOf(split.District),
	}
}

func NewIncomeList(rows []core.Income) IncomeList {
	out := IncomeList{Success: true, Data: make([]Income, 0, len(rows)), Count: len(rows)}
	var total, local, district core.Money
	for _, in := range rows {
		w := FromIncome(in)
		out.Data = append(out.Data, w)
		total = total.Add(in.Amount)
		local = local.Add(w.LocalAmount.Money())
		district = district.Add(w.DistrictAmount.Money())
	}
	out.Totals = IncomeTotals{TotalAmount: AmountOf(total), TotalLocal: AmountOf(local), TotalDistrict: AmountOf(district)}
	return out
}

func FromTithe(r core.LedgerRecord) Tithe {
	split := allocation.Allocate(r.Total)
	return Tithe{
		ID:             r.ID,
		MemberName:     r.MemberName,
		MemberID:       r.MemberID,
		Month:          r.Month,
		Date:           r.Date.String(),
		Week1:          OptionalAmount(r.Weeks[0]),
		Week2:          OptionalAmount(r.Weeks[1]),
		Week3:          OptionalAmount(r.Weeks[2]),
		Week4:          OptionalAmount(r.Weeks[3]),
		Week5:          OptionalAmount(r.Weeks[4]),
		TotalAmount:    AmountOf(r.Total),
		DistrictAmount: AmountOf(split.District),
		LocalAmount:    AmountOf(split.Local),
	}
}

func NewTitheList(rows []core.LedgerRecord) TitheList {
	out := TitheList{Success: true, Data: make([]Tithe, 0, len(rows)), Count: len(rows)}
	var total, local, district core.Money
	for _, r := range rows {
		w := FromTithe(r)
		out.Data = append(out.Data, w)
		total = total.Add(r.Total)
		local = local.Add(w.LocalAmount.Money())
		district = district.Add(w.DistrictAmount.Money())
	}
	out.Totals = TitheTotals{TotalTithes: AmountOf(total), TotalDistrict: AmountOf(district), TotalLocal: AmountOf(local)}
	return out
}

func FromOffering(r core.LedgerRecord) Offering {
	return Offering{
		ID:         r.ID,
		MemberName: r.MemberName,
		MemberID:   r.MemberID,
		Month:      r.Month,
		Week1:      OptionalAmount(r.Weeks[0]),
		Week2:      OptionalAmount(r.Weeks[1]),
		Week3:      OptionalAmount(r.Weeks[2]),
		Week4:      OptionalAmount(r.Weeks[3]),
		Week5:      OptionalAmount(r.Weeks[4]),
		Total:      AmountOf(r.Total),
		Date:       r.Date.String(),
	}
}

func FromExpense(e core.Expense) Expense {
	return Expense{
		ID:          e.ID,
		Category:    e.Category,
		Description: e.Description,
		Amount:      AmountOf(e.Amount),
		Date:        e.Date.String(),
		ExpenseType: string(e.Tier),
	}
}

func FromDistrictExpense(a core.AutoDistrictExpense) DistrictExpense {
	return DistrictExpense{
		ID:             a.ID,
		Source:         a.Source,
		SourceRef:      a.SourceRef,
		Description:    a.Description,
		OriginalAmount: AmountOf(a.OriginalAmount),
		DistrictAmount: AmountOf(a.DistrictAmount),
		Date:           a.Date.String(),
		Status:         a.Status,
	}
}

func FromDistrictLedgerEntry(e core.DistrictLedgerEntry) DistrictLedgerEntry {
	return DistrictLedgerEntry{
		ID:          e.ID,
		Date:        e.Date.String(),
		Description: e.Description,
		Amount:      AmountOf(e.Amount),
		Status:      e.Status,
		IsAuto:      e.IsAuto,
	}
}

func FromInventoryItem(it core.InventoryItem) InventoryItem {
	return InventoryItem{
		ID:        it.ID,
		ItemName:  it.ItemName,
		Category:  it.Category,
		Quantity:  it.Quantity,
		Condition: string(it.Condition),
		DateAdded: it.DateAdded.String(),
	}
}

// ---- wire -> core ----

// Decoder converts remote records to core types, replacing unusable fields
// with safe defaults and collecting a warning for each replacement.
type Decoder struct {
	Warnings []core.DataQualityWarning
}

func (d *Decoder) warn(source string, id int64, field, detail string) {
	d.Warnings = append(d.Warnings, core.DataQualityWarning{Source: source, RecordID: id, Field: field, Detail: detail})
}

func (d *Decoder) amount(source string, id int64, field string, a Amount) core.Money {
	switch {
	case a.Valid:
		return a.Money()
	case a.IsNull():
		d.warn(source, id, field, "null amount, using 0")
	default:
		d.warn(source, id, field, fmt.Sprintf("non-numeric amount %q, using 0", a.Raw))
	}
	return core.Money{}
}

// week keeps null cells as unpaid and reports only non-numeric ones.
func (d *Decoder) week(source string, id int64, n int, a Amount) *core.Money {
	if !a.Valid && !a.IsNull() {
		d.warn(source, id, fmt.Sprintf("week%d", n), fmt.Sprintf("non-numeric amount %q, treated as unpaid", a.Raw))
	}
	return a.Ptr()
}

// date leaves the zero date for unparsable input. Views that need a date
// substitute their own default.
func (d *Decoder) date(source string, id int64, s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	parsed, err := core.ParseDate(s)
	if err != nil {
		d.warn(source, id, "date", fmt.Sprintf("unparsable date %q", s))
		return core.Date{}
	}
	return parsed
}

func (d *Decoder) Income(w Income) core.Income {
	kind := core.PlainIncome
	switch {
	case w.IsTithe && w.IsOffering:
		d.warn("income", w.ID, "is_tithe", "flagged as tithe and offering, counted as tithe")
		kind = core.TitheIncome
	case w.IsTithe:
		kind = core.TitheIncome
	case w.IsOffering:
		kind = core.OfferingIncome
	}
	return core.Income{
		ID:          w.ID,
		Category:    w.Category,
		Description: w.Description,
		Amount:      d.amount("income", w.ID, "amount", w.Amount),
		Date:        d.date("income", w.ID, w.Date),
		Kind:        kind,
		Local:       w.LocalAmount.Money(),
		District:    w.DistrictAmount.Money(),
	}
}

func (d *Decoder) Tithe(w Tithe) core.LedgerRecord {
	const src = "tithes"
	return core.LedgerRecord{
		ID:         w.ID,
		MemberName: w.MemberName,
		MemberID:   w.MemberID,
		Month:      w.Month,
		Date:       d.date(src, w.ID, w.Date),
		Weeks: [core.WeeksPerMonth]*core.Money{
			d.week(src, w.ID, 1, w.Week1),
			d.week(src, w.ID, 2, w.Week2),
			d.week(src, w.ID, 3, w.Week3),
			d.week(src, w.ID, 4, w.Week4),
			d.week(src, w.ID, 5, w.Week5),
		},
		Total: d.amount(src, w.ID, "total_amount", w.TotalAmount),
	}
}

func (d *Decoder) Offering(w Offering) core.LedgerRecord {
	const src = "offerings"
	return core.LedgerRecord{
		ID:         w.ID,
		MemberName: w.MemberName,
		MemberID:   w.MemberID,
		Month:      w.Month,
		Date:       d.date(src, w.ID, w.Date),
		Weeks: [core.WeeksPerMonth]*core.Money{
			d.week(src, w.ID, 1, w.Week1),
			d.week(src, w.ID, 2, w.Week2),
			d.week(src, w.ID, 3, w.Week3),
			d.week(src, w.ID, 4, w.Week4),
			d.week(src, w.ID, 5, w.Week5),
		},
		Total: d.amount(src, w.ID, "total", w.Total),
	}
}

func (d *Decoder) Expense(w Expense, tier core.ExpenseTier) core.Expense {
	if parsed, err := core.ParseExpenseTier(w.ExpenseType); err == nil && w.ExpenseType != "" {
		tier = parsed
	}
	return core.Expense{
		ID:          w.ID,
		Category:    w.Category,
		Description: w.Description,
		Amount:      d.amount("expenses", w.ID, "amount", w.Amount),
		Date:        d.date("expenses", w.ID, w.Date),
		Tier:        tier,
	}
}

func (d *Decoder) DistrictExpense(w DistrictExpense) core.AutoDistrictExpense {
	const src = "district_expenses"
	return core.AutoDistrictExpense{
		ID:             w.ID,
		Source:         w.Source,
		SourceRef:      w.SourceRef,
		Description:    w.Description,
		OriginalAmount: d.amount(src, w.ID, "originalAmount", w.OriginalAmount),
		DistrictAmount: d.amount(src, w.ID, "districtAmount", w.DistrictAmount),
		Date:           d.date(src, w.ID, w.Date),
		Status:         w.Status,
	}
}

package core

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of every date.
const DateLayout = "2006-01-02"

// GeneralOfferingName marks the congregation-wide offering record.
const GeneralOfferingName = "General Offering"

// WeeksPerMonth is the number of week cells in a ledger record.
const WeeksPerMonth = 5

const (
	PlainIncome IncomeKind = iota
	TitheIncome
	OfferingIncome
)

const (
	LocalExpense    ExpenseTier = "other"
	DistrictExpense ExpenseTier = "district"
	NationalExpense ExpenseTier = "national"
)

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusAllocated = "Allocated"
)

type (
	IncomeKind  int
	ExpenseTier string
	Condition   string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Income struct {
		ID          int64
		Category    string
		Description string
		Amount      Money
		Date        Date
		Kind        IncomeKind
		// Local and District are the stored split; both zero means not supplied.
		Local     Money
		District  Money
		LedgerRef string // "tithe:<id>" or "offering:<id>" when created by a ledger upsert
	}

	// LedgerRecord is one member (or the general offering) for one month.
	// A nil week is an unpaid week, distinct from an explicit zero.
	LedgerRecord struct {
		ID         int64
		MemberName string
		MemberID   string
		Month      int // 0-11
		Date       Date
		Weeks      [WeeksPerMonth]*Money
		Total      Money
	}

	Expense struct {
		ID          int64
		Category    string
		Description string
		Amount      Money
		Date        Date
		Tier        ExpenseTier
	}

	AutoDistrictExpense struct {
		ID             int64
		Source         string
		SourceRef      string // "income:<id>", unique per allocation
		Description    string
		OriginalAmount Money
		DistrictAmount Money
		Date           Date
		Status         string
	}

	// DistrictLedgerEntry is a manual district expense or an auto allocation.
	DistrictLedgerEntry struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		Status      string
		IsAuto      bool
	}

	InventoryItem struct {
		ID        int64
		ItemName  string
		Category  string
		Quantity  int
		Condition Condition
		DateAdded Date
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (k IncomeKind) String() string {
	switch k {
	case PlainIncome:
		return "income"
	case TitheIncome:
		return "tithe"
	case OfferingIncome:
		return "offering"
	}
	return "unknown"
}

// IsAllocated reports whether the kind is subject to the local/district split.
func (k IncomeKind) IsAllocated() bool {
	return k == TitheIncome || k == OfferingIncome
}

// KindFromFlags maps the wire flags onto an income kind.
func KindFromFlags(isTithe, isOffering bool) (IncomeKind, error) {
	switch {
	case isTithe && isOffering:
		return PlainIncome, &ValidationError{Field: "is_tithe", Err: ErrTitheAndOffering}
	case isTithe:
		return TitheIncome, nil
	case isOffering:
		return OfferingIncome, nil
	}
	return PlainIncome, nil
}

// ParseExpenseTier accepts "other", "district" or "national". Empty means "other".
func ParseExpenseTier(s string) (ExpenseTier, error) {
	switch ExpenseTier(strings.ToLower(strings.TrimSpace(s))) {
	case "", LocalExpense:
		return LocalExpense, nil
	case DistrictExpense:
		return DistrictExpense, nil
	case NationalExpense:
		return NationalExpense, nil
	}
	return "", &ValidationError{Field: "expense_type", Err: ErrInvalidTier}
}

func (c Condition) Validate() error {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return nil
	}
	return &ValidationError{Field: "condition", Err: ErrInvalidCondition}
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if err := i.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if strings.TrimSpace(i.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if len(i.Description) > 200 {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if len(e.Description) > 200 {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if _, err := ParseExpenseTier(string(e.Tier)); err != nil {
		return err
	}
	return nil
}

func (it InventoryItem) Validate() error {
	if strings.TrimSpace(it.ItemName) == "" {
		return &ValidationError{Field: "itemName", Err: ErrEmptyDescription}
	}
	if strings.TrimSpace(it.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if it.Quantity < 0 {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	return it.Condition.Validate()
}

// Sum adds the five weeks, treating unpaid weeks as zero.
func (r LedgerRecord) Sum() Money {
	var total Money
	for _, w := range r.Weeks {
		if w != nil {
			total = total.Add(*w)
		}
	}
	return total
}

// IsGeneralOffering reports whether r is the congregation-wide offering row.
func (r LedgerRecord) IsGeneralOffering() bool {
	return r.MemberName == GeneralOfferingName
}

// Week returns the amount for week n (1-5), nil when unpaid.
func (r LedgerRecord) Week(n int) *Money {
	if n < 1 || n > WeeksPerMonth {
		return nil
	}
	return r.Weeks[n-1]
}

// Clone returns a copy that shares no week pointers with r.
func (r LedgerRecord) Clone() LedgerRecord {
	out := r
	for i, w := range r.Weeks {
		if w != nil {
			v := *w
			out.Weeks[i] = &v
		}
	}
	return out
}

// ValidMonth reports whether m is a ledger month index.
func ValidMonth(m int) bool { return m >= 0 && m <= 11 }

// ValidWeek reports whether w is a ledger week number.
func ValidWeek(w int) bool { return w >= 1 && w <= WeeksPerMonth }

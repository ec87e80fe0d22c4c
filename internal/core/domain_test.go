package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("round trip got %q", d.String())
	}
	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should render empty")
	}
}

func TestKindFromFlags(t *testing.T) {
	cases := []struct {
		tithe, offering bool
		want            IncomeKind
		ok              bool
	}{
		{false, false, PlainIncome, true},
		{true, false, TitheIncome, true},
		{false, true, OfferingIncome, true},
		{true, true, PlainIncome, false},
	}
	for i, tc := range cases {
		got, err := KindFromFlags(tc.tithe, tc.offering)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d expected %v, got %v (err=%v)", i, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrTitheAndOffering) {
			t.Fatalf("case %d expected ErrTitheAndOffering, got %v", i, err)
		}
	}
}

func TestParseExpenseTier(t *testing.T) {
	cases := []struct {
		in   string
		want ExpenseTier
		ok   bool
	}{
		{"", LocalExpense, true},
		{"other", LocalExpense, true},
		{"District", DistrictExpense, true},
		{" national ", NationalExpense, true},
		{"regional", "", false},
	}
	for _, tc := range cases {
		got, err := ParseExpenseTier(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !IsValidation(err) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Category:    "Utilities",
		Description: "ok",
		Amount:      Money{Cents: 100},
		Tier:        LocalExpense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Category: "c", Description: "a", Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Category: "c", Description: "", Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Category: "c", Description: "a", Amount: Money{Cents: 0}},
		{Date: NewDate(2025, 1, 1), Category: "", Description: "a", Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Category: "c", Description: "a", Amount: Money{Cents: 1}, Tier: "regional"},
	}
	for i, e := range bads {
		if err := e.Validate(); !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestInventoryItemValidate(t *testing.T) {
	ok := InventoryItem{ItemName: "Chairs", Category: "Furniture", Quantity: 40, Condition: ConditionGood}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := ok
	bad.Condition = "Broken"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
}

func TestLedgerRecordSumTreatsNullAsZero(t *testing.T) {
	ten, zero := Money{Cents: 1000}, Money{}
	r := LedgerRecord{Weeks: [WeeksPerMonth]*Money{&ten, &zero, nil, &zero, &zero}}
	if got := r.Sum(); got.Cents != 1000 {
		t.Fatalf("expected 1000 cents, got %d", got.Cents)
	}
	if r.Week(3) != nil {
		t.Fatalf("week 3 should be unpaid")
	}
	if r.Week(6) != nil || r.Week(0) != nil {
		t.Fatalf("out of range weeks should be nil")
	}
}

func TestLedgerRecordClone(t *testing.T) {
	v := Money{Cents: 500}
	r := LedgerRecord{Weeks: [WeeksPerMonth]*Money{&v}}
	c := r.Clone()
	c.Weeks[0].Cents = 1
	if r.Weeks[0].Cents != 500 {
		t.Fatalf("clone shares week pointers")
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: NewDate(2025, 3, 2), End: NewDate(2025, 3, 8)}
	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2025, 3, 2), true},
		{NewDate(2025, 3, 8), true},
		{NewDate(2025, 3, 1), false},
		{NewDate(2025, 3, 9), false},
		{Date{}, false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.d); got != tc.want {
			t.Fatalf("%s expected %v, got %v", tc.d, tc.want, got)
		}
	}
	if !(DateRange{}).Contains(NewDate(1999, 1, 1)) {
		t.Fatalf("open range should contain every dated record")
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := error(&ValidationError{Field: "amount", Err: ErrInvalidAmount})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected errors.Is to see the sentinel")
	}
	if err.Error() != "amount: invalid amount" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNetworkErrorMessage(t *testing.T) {
	err := &NetworkError{Op: "GET", URL: "http://x/api/income", StatusCode: 502}
	if err.Error() != "GET http://x/api/income: status 502" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

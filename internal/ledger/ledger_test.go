package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
)

type fakeLedger struct {
	records map[string]core.LedgerRecord
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]core.LedgerRecord{}}
}

func (f *fakeLedger) upsert(memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	key := memberID + "|" + string(rune('a'+month))
	var existing *core.LedgerRecord
	if r, ok := f.records[key]; ok {
		existing = &r
	}
	rec, err := apply(existing)
	if err != nil {
		return core.LedgerRecord{}, err
	}
	if existing == nil {
		f.nextID++
		rec.ID = f.nextID
	}
	f.records[key] = rec
	return rec, nil
}

func (f *fakeLedger) list(month int) []core.LedgerRecord {
	var out []core.LedgerRecord
	for _, r := range f.records {
		if r.Month == month {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeLedger) UpsertTithe(_ context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return f.upsert(memberID, month, apply)
}
func (f *fakeLedger) ListTithes(_ context.Context, month int) ([]core.LedgerRecord, error) {
	return f.list(month), nil
}
func (f *fakeLedger) DeleteTithe(context.Context, int64) error { return nil }

type fakeOfferings struct{ *fakeLedger }

func (f fakeOfferings) UpsertOffering(_ context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return f.upsert(memberID, month, apply)
}
func (f fakeOfferings) ListOfferings(_ context.Context, month int) ([]core.LedgerRecord, error) {
	return f.list(month), nil
}
func (f fakeOfferings) DeleteOffering(context.Context, int64) error { return nil }

func fixedClock() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestApplyNewRecordHasSingleWeek(t *testing.T) {
	rec, err := Apply(nil, Entry{MemberName: "Ama", Month: 2, Week: 3, Amount: cents(5000)}, core.NewDate(2025, 3, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= core.WeeksPerMonth; i++ {
		if i == 3 {
			continue
		}
		if rec.Week(i) != nil {
			t.Fatalf("week %d expected nil", i)
		}
	}
	if rec.Total.Cents != 5000 || rec.MemberID != "Ama" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Date.String() != "2025-03-09" {
		t.Fatalf("date not stamped: %q", rec.Date.String())
	}
}

func TestApplyRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		e    Entry
		want error
	}{
		{Entry{MemberName: " ", Month: 1, Week: 1, Amount: cents(1)}, core.ErrEmptyMemberName},
		{Entry{MemberName: "Kofi", Month: 12, Week: 1, Amount: cents(1)}, core.ErrInvalidMonth},
		{Entry{MemberName: "Kofi", Month: -1, Week: 1, Amount: cents(1)}, core.ErrInvalidMonth},
		{Entry{MemberName: "Kofi", Month: 0, Week: 0, Amount: cents(1)}, core.ErrInvalidWeek},
		{Entry{MemberName: "Kofi", Month: 0, Week: 6, Amount: cents(1)}, core.ErrInvalidWeek},
		{Entry{MemberName: "Kofi", Month: 0, Week: 1, Amount: cents(0)}, core.ErrInvalidAmount},
	}
	for i, tc := range cases {
		_, err := Apply(nil, tc.e, core.NewDate(2025, 1, 1))
		if !errors.Is(err, tc.want) || !core.IsValidation(err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestUpsertWeekKeepsOtherWeeks(t *testing.T) {
	f := newFakeLedger()
	svc := NewService(f, fakeOfferings{newFakeLedger()}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := svc.UpsertWeek(ctx, Entry{MemberName: "Ama", Month: 4, Week: 3, Amount: cents(5000)}); err != nil {
		t.Fatalf("upsert week 3: %v", err)
	}
	rec, err := svc.UpsertWeek(ctx, Entry{MemberName: "Ama", Month: 4, Week: 1, Amount: cents(2000)})
	if err != nil {
		t.Fatalf("upsert week 1: %v", err)
	}
	if rec.Total.Cents != 7000 {
		t.Fatalf("expected total 7000, got %d", rec.Total.Cents)
	}
	for _, w := range []int{2, 4, 5} {
		if rec.Week(w) != nil {
			t.Fatalf("week %d expected nil", w)
		}
	}
	if len(f.records) != 1 {
		t.Fatalf("expected one record, got %d", len(f.records))
	}
}

func TestUpsertWeekReplacesSameWeek(t *testing.T) {
	f := newFakeLedger()
	svc := NewService(f, fakeOfferings{newFakeLedger()}).WithClock(fixedClock)
	ctx := context.Background()
	e := Entry{MemberID: "m-1", MemberName: "Kofi", Month: 0, Week: 2, Amount: cents(1000)}
	if _, err := svc.UpsertWeek(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Amount = cents(1500)
	rec, err := svc.UpsertWeek(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Total.Cents != 1500 || rec.Week(2).Cents != 1500 {
		t.Fatalf("expected week replaced, got %+v", rec)
	}
}

func TestUpsertGeneralOfferingAddressesWeekCell(t *testing.T) {
	offerings := fakeOfferings{newFakeLedger()}
	svc := NewService(newFakeLedger(), offerings).WithClock(fixedClock)
	ctx := context.Background()
	for w := 1; w <= 2; w++ {
		if _, err := svc.UpsertGeneralOffering(ctx, 5, w, cents(int64(w)*10000)); err != nil {
			t.Fatal(err)
		}
	}
	view, err := svc.ListForMonth(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if view.GeneralOffering == nil || view.GeneralOffering.Total.Cents != 30000 {
		t.Fatalf("unexpected general offering %+v", view.GeneralOffering)
	}
}

func TestMonthListingExcludesGeneralOffering(t *testing.T) {
	tithes := []core.LedgerRecord{
		{ID: 1, MemberName: "Yaw", Month: 1},
		{ID: 2, MemberName: core.GeneralOfferingName, Month: 1},
		{ID: 3, MemberName: "Abena", Month: 1},
		{ID: 4, MemberName: "Esi", Month: 2},
	}
	offerings := []core.LedgerRecord{
		{ID: 10, MemberName: "Yaw", Month: 1},
		{ID: 11, MemberName: core.GeneralOfferingName, Month: 1},
	}
	view := MonthListing(1, tithes, offerings)
	if len(view.Members) != 2 || view.Members[0].MemberName != "Abena" || view.Members[1].MemberName != "Yaw" {
		t.Fatalf("unexpected members %+v", view.Members)
	}
	if view.GeneralOffering == nil || view.GeneralOffering.ID != 11 {
		t.Fatalf("expected general offering 11, got %+v", view.GeneralOffering)
	}
	if v := MonthListing(3, tithes, offerings); v.GeneralOffering != nil || len(v.Members) != 0 {
		t.Fatalf("expected empty month, got %+v", v)
	}
}

func TestListForMonthRejectsBadMonth(t *testing.T) {
	svc := NewService(newFakeLedger(), fakeOfferings{newFakeLedger()})
	if _, err := svc.ListForMonth(context.Background(), 12); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
)

type ledgerKey struct {
	memberID string
	month    int
}

type Store struct {
	mu        sync.Mutex
	nextID    int64
	now       func() time.Time
	income    []core.Income
	tithes    []core.LedgerRecord
	offerings []core.LedgerRecord
	expenses  []core.Expense
	auto      []core.AutoDistrictExpense
	inventory []core.InventoryItem
	archive   map[int]core.ArchivedPeriod
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now, archive: map[int]core.ArchivedPeriod{}}
}

// WithClock sets the clock used to stamp inventory dates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.id()
	s.income = append(s.income, in)
	return in, nil
}

func (s *Store) GetIncome(_ context.Context, id int64) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.income {
		if in.ID == id {
			return in, nil
		}
	}
	return core.Income{}, fmt.Errorf("income %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListIncome(_ context.Context, f store.IncomeFilter) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Income
	for _, in := range s.income {
		if f.Matches(in) {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if a, b := out[i].Date.String(), out[j].Date.String(); a != b {
			return a > b
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteIncome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, in := range s.income {
		if in.ID == id {
			s.income = append(s.income[:i], s.income[i+1:]...)
			s.dropPendingAuto(store.IncomeRef(id))
			return nil
		}
	}
	return fmt.Errorf("income %d: %w", id, core.ErrNotFound)
}

// dropPendingAuto removes the pending auto entry for ref. Caller holds mu.
func (s *Store) dropPendingAuto(ref string) {
	kept := s.auto[:0]
	for _, a := range s.auto {
		if a.SourceRef == ref && a.Status == core.StatusPending {
			continue
		}
		kept = append(kept, a)
	}
	s.auto = kept
}

// dropLinkedIncome removes income rows created by a ledger record and their
// pending auto entries. Caller holds mu.
func (s *Store) dropLinkedIncome(ledgerRef string) {
	kept := s.income[:0]
	for _, in := range s.income {
		if in.LedgerRef == ledgerRef {
			s.dropPendingAuto(store.IncomeRef(in.ID))
			continue
		}
		kept = append(kept, in)
	}
	s.income = kept
}

func (s *Store) upsertLedger(records *[]core.LedgerRecord, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range *records {
		if r.MemberID == memberID && r.Month == month {
			existing := r.Clone()
			next, err := apply(&existing)
			if err != nil {
				return core.LedgerRecord{}, err
			}
			next.ID = r.ID
			(*records)[i] = next.Clone()
			return next, nil
		}
	}
	next, err := apply(nil)
	if err != nil {
		return core.LedgerRecord{}, err
	}
	next.ID = s.id()
	*records = append(*records, next.Clone())
	return next, nil
}

func listLedger(records []core.LedgerRecord, month int) []core.LedgerRecord {
	var out []core.LedgerRecord
	for _, r := range records {
		if month == store.AllMonths || r.Month == month {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *Store) UpsertTithe(_ context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return s.upsertLedger(&s.tithes, memberID, month, apply)
}

func (s *Store) ListTithes(_ context.Context, month int) ([]core.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := listLedger(s.tithes, month)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}

func (s *Store) DeleteTithe(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.tithes {
		if r.ID == id {
			s.tithes = append(s.tithes[:i], s.tithes[i+1:]...)
			s.dropLinkedIncome(store.TitheRef(id))
			return nil
		}
	}
	return fmt.Errorf("tithe %d: %w", id, core.ErrNotFound)
}

func (s *Store) UpsertOffering(_ context.Context, memberID string, month int, apply store.ApplyFunc) (core.LedgerRecord, error) {
	return s.upsertLedger(&s.offerings, memberID, month, apply)
}

func (s *Store) ListOfferings(_ context.Context, month int) ([]core.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listLedger(s.offerings, month), nil
}

func (s *Store) DeleteOffering(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.offerings {
		if r.ID == id {
			s.offerings = append(s.offerings[:i], s.offerings[i+1:]...)
			s.dropLinkedIncome(store.OfferingRef(id))
			return nil
		}
	}
	return fmt.Errorf("offering %d: %w", id, core.ErrNotFound)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if e.Tier == "" {
		e.Tier = core.LocalExpense
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, tier core.ExpenseTier) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if tier == "" || e.Tier == tier {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.String() > out[j].Date.String() })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
}

func (s *Store) RecordAutoDistrict(_ context.Context, e core.AutoDistrictExpense) (core.AutoDistrictExpense, bool, error) {
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.SourceRef != "" {
		for _, a := range s.auto {
			if a.SourceRef == e.SourceRef {
				return a, false, nil
			}
		}
	}
	e.ID = s.id()
	s.auto = append(s.auto, e)
	return e, true, nil
}

func (s *Store) ListAutoDistrict(_ context.Context) ([]core.AutoDistrictExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.AutoDistrictExpense(nil), s.auto...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.String() > out[j].Date.String() })
	return out, nil
}

func (s *Store) PendingAllocations(_ context.Context, limit int) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := make(map[string]bool, len(s.auto))
	for _, a := range s.auto {
		done[a.SourceRef] = true
	}
	var out []core.Income
	for _, in := range s.income {
		if !in.Kind.IsAllocated() || done[store.IncomeRef(in.ID)] {
			continue
		}
		out = append(out, in)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateInventoryItem(_ context.Context, it core.InventoryItem) (core.InventoryItem, error) {
	if err := it.Validate(); err != nil {
		return core.InventoryItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.id()
	it.DateAdded = core.DateOf(s.now())
	s.inventory = append(s.inventory, it)
	return it, nil
}

func (s *Store) ListInventory(_ context.Context) ([]core.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.InventoryItem(nil), s.inventory...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateAdded.String() > out[j].DateAdded.String() })
	return out, nil
}

func (s *Store) DeleteInventoryItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.inventory {
		if it.ID == id {
			s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("inventory item %d: %w", id, core.ErrNotFound)
}

// ArchivePeriod holds the store lock for the whole snapshot, build and clear
// sequence, so no write can land between the snapshot and the reset.
func (s *Store) ArchivePeriod(_ context.Context, year int, build store.ArchiveFunc) (core.ArchivedPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.archive[year]; ok {
		return core.ArchivedPeriod{}, fmt.Errorf("archive %d: %w", year, core.ErrConflict)
	}
	snap := core.Snapshot{
		Income:       append([]core.Income(nil), s.income...),
		Tithes:       listLedger(s.tithes, store.AllMonths),
		Offerings:    listLedger(s.offerings, store.AllMonths),
		Expenses:     append([]core.Expense(nil), s.expenses...),
		AutoDistrict: append([]core.AutoDistrictExpense(nil), s.auto...),
	}
	ap := build(snap)
	ap.Year = year
	s.archive[year] = ap
	s.income, s.tithes, s.offerings, s.expenses, s.auto = nil, nil, nil, nil, nil
	return ap, nil
}

func (s *Store) HistoricalYears(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	years := make([]int, 0, len(s.archive))
	for y := range s.archive {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (s *Store) HistoricalPeriod(_ context.Context, year int) (core.ArchivedPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.archive[year]
	if !ok {
		return core.ArchivedPeriod{}, fmt.Errorf("archive %d: %w", year, core.ErrNotFound)
	}
	return ap, nil
}

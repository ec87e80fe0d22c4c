// Package store defines the persistence ports the services depend on.
package store

import (
	"context"

	"github.com/Afatsiawu/FMS/internal/core"
)

// AllMonths disables the month filter of the ledger list calls.
const AllMonths = -1

// ApplyFunc computes the new state of a ledger record from its current
// state, nil when the record does not exist yet. It runs inside the store's
// atomic section and must not call back into the store.
type ApplyFunc func(existing *core.LedgerRecord) (core.LedgerRecord, error)

// ArchiveFunc builds the archived period from the active snapshot.
type ArchiveFunc func(core.Snapshot) core.ArchivedPeriod

// IncomeFilter narrows ListIncome. A nil Kind matches every kind.
type IncomeFilter struct {
	Range core.DateRange
	Kind  *core.IncomeKind
}

// Matches reports whether in passes the filter.
func (f IncomeFilter) Matches(in core.Income) bool {
	if f.Kind != nil && in.Kind != *f.Kind {
		return false
	}
	if f.Range.IsOpen() {
		return true
	}
	return f.Range.Contains(in.Date)
}

type IncomeStore interface {
	CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	ListIncome(ctx context.Context, f IncomeFilter) ([]core.Income, error)
	// DeleteIncome also removes the pending auto district entry of the row.
	DeleteIncome(ctx context.Context, id int64) error
}

type TitheStore interface {
	UpsertTithe(ctx context.Context, memberID string, month int, apply ApplyFunc) (core.LedgerRecord, error)
	ListTithes(ctx context.Context, month int) ([]core.LedgerRecord, error)
	// DeleteTithe removes the record, its linked income rows and their
	// pending auto district entries.
	DeleteTithe(ctx context.Context, id int64) error
}

type OfferingStore interface {
	UpsertOffering(ctx context.Context, memberID string, month int, apply ApplyFunc) (core.LedgerRecord, error)
	ListOfferings(ctx context.Context, month int) ([]core.LedgerRecord, error)
	DeleteOffering(ctx context.Context, id int64) error
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	// ListExpenses returns one tier, or every tier when tier is empty.
	ListExpenses(ctx context.Context, tier core.ExpenseTier) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

type DistrictFeed interface {
	// RecordAutoDistrict is idempotent on SourceRef. created is false when an
	// entry with the same SourceRef already existed; that entry is returned.
	RecordAutoDistrict(ctx context.Context, e core.AutoDistrictExpense) (stored core.AutoDistrictExpense, created bool, err error)
	ListAutoDistrict(ctx context.Context) ([]core.AutoDistrictExpense, error)
	// PendingAllocations returns tithe and offering income that has no auto
	// district entry yet, oldest first.
	PendingAllocations(ctx context.Context, limit int) ([]core.Income, error)
}

type InventoryStore interface {
	CreateInventoryItem(ctx context.Context, it core.InventoryItem) (core.InventoryItem, error)
	ListInventory(ctx context.Context) ([]core.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int64) error
}

type PeriodArchiver interface {
	// ArchivePeriod snapshots the active period, persists build's result and
	// clears the active tables in one atomic step. Inventory is kept.
	ArchivePeriod(ctx context.Context, year int, build ArchiveFunc) (core.ArchivedPeriod, error)
	HistoricalYears(ctx context.Context) ([]int, error)
	HistoricalPeriod(ctx context.Context, year int) (core.ArchivedPeriod, error)
}

// Reader is the read side every view is computed from. The local stores and
// the remote API client both satisfy it.
type Reader interface {
	ListIncome(ctx context.Context, f IncomeFilter) ([]core.Income, error)
	ListTithes(ctx context.Context, month int) ([]core.LedgerRecord, error)
	ListOfferings(ctx context.Context, month int) ([]core.LedgerRecord, error)
	ListExpenses(ctx context.Context, tier core.ExpenseTier) ([]core.Expense, error)
	ListAutoDistrict(ctx context.Context) ([]core.AutoDistrictExpense, error)
}

// Repository is a complete local store.
type Repository interface {
	IncomeStore
	TitheStore
	OfferingStore
	ExpenseStore
	DistrictFeed
	InventoryStore
	PeriodArchiver
	Close() error
}

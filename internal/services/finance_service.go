package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/ledger"
	"github.com/Afatsiawu/FMS/internal/store"
)

// AllocationPublisher announces income rows whose district share must be
// recorded.
type AllocationPublisher interface {
	PublishAllocation(ctx context.Context, incomeID, version int64) error
}

// FinanceService orchestrates every write: store first, allocation event
// second. A failed publish never fails the request; the worker's pending
// scan records the entry later.
type FinanceService struct {
	repo       store.Repository
	ledger     *ledger.Service
	allocation *AllocationService
	publisher  AllocationPublisher
	now        func() time.Time
}

// NewFinanceService wires the service. publisher may be nil, in which case
// district entries are written inline.
func NewFinanceService(repo store.Repository, publisher AllocationPublisher) *FinanceService {
	return &FinanceService{
		repo:       repo,
		ledger:     ledger.NewService(repo, repo),
		allocation: NewAllocationService(repo),
		publisher:  publisher,
		now:        time.Now,
	}
}

// WithClock replaces the clock for ledger dates and defaulted income dates.
func (s *FinanceService) WithClock(now func() time.Time) *FinanceService {
	s.now = now
	s.ledger.WithClock(now)
	return s
}

func (s *FinanceService) Ledger() *ledger.Service { return s.ledger }

func (s *FinanceService) today() core.Date { return core.DateOf(s.now()) }

// CreateIncome stores an income row. Tithe and offering rows get their
// split computed when the caller did not supply one.
func (s *FinanceService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if in.Date.IsZero() {
		in.Date = s.today()
	}
	if in.Kind.IsAllocated() && in.Local.IsZero() && in.District.IsZero() {
		split := allocation.Allocate(in.Amount)
		in.Local, in.District = split.Local, split.District
	}
	if !in.Kind.IsAllocated() {
		in.Local, in.District = core.Money{}, core.Money{}
	}

	stored, err := s.repo.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	if stored.Kind.IsAllocated() {
		s.requestAllocation(ctx, stored.ID)
	}
	return stored, nil
}

func (s *FinanceService) requestAllocation(ctx context.Context, incomeID int64) {
	if s.publisher == nil {
		if _, _, err := s.allocation.AllocateIncome(ctx, incomeID); err != nil {
			slog.ErrorContext(ctx, "Failed to record district allocation inline",
				"income_id", incomeID, "error", err)
		}
		return
	}
	if err := s.publisher.PublishAllocation(ctx, incomeID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish allocation message",
			"income_id", incomeID, "error", err)
	}
}

func (s *FinanceService) DeleteIncome(ctx context.Context, id int64) error {
	if err := s.repo.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

func (s *FinanceService) ListIncome(ctx context.Context, f store.IncomeFilter) ([]core.Income, error) {
	rows, err := s.repo.ListIncome(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	return rows, nil
}

// LedgerPosting is the outcome of a tithe or offering post: the updated
// ledger record and the flagged income row created for the week.
type LedgerPosting struct {
	Record core.LedgerRecord
	Income core.Income
	Split  allocation.Split
}

// RecordTithe upserts one week of a member's tithe and records the week's
// amount as a tithe income row linked to the ledger record.
func (s *FinanceService) RecordTithe(ctx context.Context, e ledger.Entry) (LedgerPosting, error) {
	rec, err := s.ledger.UpsertWeek(ctx, e)
	if err != nil {
		return LedgerPosting{}, err
	}
	e = e.Normalize()
	in := core.Income{
		Category:    "Tithe - " + e.MemberName,
		Description: fmt.Sprintf("Tithe from %s - %s Week %d", e.MemberName, MonthName(e.Month), e.Week),
		Amount:      e.Amount,
		Date:        rec.Date,
		Kind:        core.TitheIncome,
		LedgerRef:   store.TitheRef(rec.ID),
	}
	return s.postLedgerIncome(ctx, rec, in)
}

// OfferingEntry is one week of an offering. An empty MemberName addresses
// the general offering.
type OfferingEntry struct {
	MemberName string
	MemberID   string
	Month      int
	Week       int
	Amount     core.Money
}

func (s *FinanceService) RecordOffering(ctx context.Context, e OfferingEntry) (LedgerPosting, error) {
	var (
		rec core.LedgerRecord
		err error
	)
	name := strings.TrimSpace(e.MemberName)
	if name == "" || name == core.GeneralOfferingName {
		rec, err = s.ledger.UpsertGeneralOffering(ctx, e.Month, e.Week, e.Amount)
	} else {
		rec, err = s.ledger.UpsertMemberOffering(ctx, ledger.Entry{
			MemberID: e.MemberID, MemberName: name, Month: e.Month, Week: e.Week, Amount: e.Amount,
		})
	}
	if err != nil {
		return LedgerPosting{}, err
	}
	in := core.Income{
		Category:    "Offering",
		Description: fmt.Sprintf("Offering - Week %d", e.Week),
		Amount:      e.Amount,
		Date:        rec.Date,
		Kind:        core.OfferingIncome,
		LedgerRef:   store.OfferingRef(rec.ID),
	}
	return s.postLedgerIncome(ctx, rec, in)
}

func (s *FinanceService) postLedgerIncome(ctx context.Context, rec core.LedgerRecord, in core.Income) (LedgerPosting, error) {
	stored, err := s.CreateIncome(ctx, in)
	if err != nil {
		return LedgerPosting{}, fmt.Errorf("record ledger income: %w", err)
	}
	return LedgerPosting{Record: rec, Income: stored, Split: allocation.ForIncome(stored)}, nil
}

func (s *FinanceService) ListTithes(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	if month != store.AllMonths && !core.ValidMonth(month) {
		return nil, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	return s.repo.ListTithes(ctx, month)
}

func (s *FinanceService) ListOfferings(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	if month != store.AllMonths && !core.ValidMonth(month) {
		return nil, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	return s.repo.ListOfferings(ctx, month)
}

func (s *FinanceService) DeleteTithe(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTithe(ctx, id); err != nil {
		return fmt.Errorf("delete tithe: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteOffering(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOffering(ctx, id); err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	return nil
}

func (s *FinanceService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Category = strings.TrimSpace(e.Category)
	e.Description = strings.TrimSpace(e.Description)
	stored, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	return stored, nil
}

func (s *FinanceService) ListExpenses(ctx context.Context, tier core.ExpenseTier) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, tier)
}

func (s *FinanceService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// RecordDistrictExpense adds an entry to the district stream by hand.
// Such entries carry no source reference.
func (s *FinanceService) RecordDistrictExpense(ctx context.Context, e core.AutoDistrictExpense) (core.AutoDistrictExpense, error) {
	if strings.TrimSpace(e.Source) == "" {
		return core.AutoDistrictExpense{}, &core.ValidationError{Field: "source", Err: core.ErrEmptyCategory}
	}
	if err := e.DistrictAmount.Validate(); err != nil {
		return core.AutoDistrictExpense{}, &core.ValidationError{Field: "districtAmount", Err: err}
	}
	if err := e.Date.Validate(); err != nil {
		return core.AutoDistrictExpense{}, &core.ValidationError{Field: "date", Err: err}
	}
	e.SourceRef = ""
	if e.Status == "" || strings.EqualFold(e.Status, core.StatusPending) {
		e.Status = core.StatusPending
	}
	stored, _, err := s.repo.RecordAutoDistrict(ctx, e)
	if err != nil {
		return core.AutoDistrictExpense{}, fmt.Errorf("save district expense: %w", err)
	}
	return stored, nil
}

// DeleteDistrictExpense always fails: the district stream only changes
// status.
func (s *FinanceService) DeleteDistrictExpense(_ context.Context, id int64) error {
	return fmt.Errorf("district expense %d: %w", id, core.ErrAutoEntryImmutable)
}

func (s *FinanceService) ListDistrictExpenses(ctx context.Context) ([]core.AutoDistrictExpense, error) {
	return s.repo.ListAutoDistrict(ctx)
}

func (s *FinanceService) CreateInventoryItem(ctx context.Context, it core.InventoryItem) (core.InventoryItem, error) {
	it.ItemName = strings.TrimSpace(it.ItemName)
	it.Category = strings.TrimSpace(it.Category)
	stored, err := s.repo.CreateInventoryItem(ctx, it)
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("save inventory item: %w", err)
	}
	return stored, nil
}

func (s *FinanceService) ListInventory(ctx context.Context) ([]core.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

func (s *FinanceService) DeleteInventoryItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInventoryItem(ctx, id); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

// Close closes the store and the publisher when it can be closed.
func (s *FinanceService) Close() error {
	var errs []error
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close finance service: %w", err)
	}
	return nil
}

// MonthName returns the English name of a 0-11 ledger month.
func MonthName(month int) string {
	if !core.ValidMonth(month) {
		return "Unknown"
	}
	return time.Month(month + 1).String()
}

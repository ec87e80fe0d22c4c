package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
)

// AllocationStore is what AllocationService needs from the store.
type AllocationStore interface {
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	RecordAutoDistrict(ctx context.Context, e core.AutoDistrictExpense) (core.AutoDistrictExpense, bool, error)
	PendingAllocations(ctx context.Context, limit int) ([]core.Income, error)
}

// AllocationService maintains the auto district stream: one entry holding
// the 77% share of every tithe and offering income row.
type AllocationService struct {
	store AllocationStore
}

func NewAllocationService(s AllocationStore) *AllocationService {
	return &AllocationService{store: s}
}

// AllocateIncome records the district entry of one income row. Calling it
// again for the same row returns the existing entry with created false.
// Plain income has no district share and is skipped.
func (s *AllocationService) AllocateIncome(ctx context.Context, incomeID int64) (core.AutoDistrictExpense, bool, error) {
	in, err := s.store.GetIncome(ctx, incomeID)
	if err != nil {
		return core.AutoDistrictExpense{}, false, fmt.Errorf("get income: %w", err)
	}
	if !in.Kind.IsAllocated() {
		slog.DebugContext(ctx, "Income is not allocated, skipping", "income_id", incomeID)
		return core.AutoDistrictExpense{}, false, nil
	}

	entry := AutoEntryFor(in)
	stored, created, err := s.store.RecordAutoDistrict(ctx, entry)
	if err != nil {
		return core.AutoDistrictExpense{}, false, fmt.Errorf("record district allocation: %w", err)
	}
	if created {
		slog.InfoContext(ctx, "District allocation recorded",
			"income_id", in.ID,
			"district_cents", stored.DistrictAmount.Cents,
			"source", stored.Source)
	}
	return stored, created, nil
}

// AutoEntryFor builds the auto district entry of an allocated income row.
func AutoEntryFor(in core.Income) core.AutoDistrictExpense {
	split := allocation.ForIncome(in)
	label := "Tithe"
	if in.Kind == core.OfferingIncome {
		label = "Offering"
	}
	desc := in.Category
	if !strings.HasPrefix(desc, label+" - ") {
		desc = label + " - " + desc
	}
	return core.AutoDistrictExpense{
		Source:         label + " Allocation",
		SourceRef:      store.IncomeRef(in.ID),
		Description:    desc,
		OriginalAmount: in.Amount,
		DistrictAmount: split.District,
		Date:           in.Date,
		Status:         core.StatusPending,
	}
}

// ProcessPending allocates up to batchSize income rows that have no auto
// entry yet. Failures are logged and counted, never returned per row.
func (s *AllocationService) ProcessPending(ctx context.Context, batchSize int) (allocated, failed int, err error) {
	pending, err := s.store.PendingAllocations(ctx, batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("list pending allocations: %w", err)
	}
	for _, in := range pending {
		if ctx.Err() != nil {
			return allocated, failed, ctx.Err()
		}
		if _, _, err := s.AllocateIncome(ctx, in.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to allocate pending income", "income_id", in.ID, "error", err)
			failed++
			continue
		}
		allocated++
	}
	if len(pending) > 0 {
		slog.InfoContext(ctx, "Pending allocations processed",
			"total", len(pending),
			"allocated", allocated,
			"failed", failed)
	}
	return allocated, failed, nil
}

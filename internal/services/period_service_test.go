package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/cache"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/store/memory"
)

type fakeMirror struct {
	years []int
	err   error
}

func (m *fakeMirror) WriteArchive(_ context.Context, ap core.ArchivedPeriod) (string, error) {
	m.years = append(m.years, ap.Year)
	return "Archive", m.err
}

type countingArchiver struct {
	store.PeriodArchiver
	reads int
}

func (c *countingArchiver) HistoricalPeriod(ctx context.Context, year int) (core.ArchivedPeriod, error) {
	c.reads++
	return c.PeriodArchiver.HistoricalPeriod(ctx, year)
}

func TestPeriodService_YearReset(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().WithClock(clock)
	fin := NewFinanceService(repo, nil).WithClock(clock)
	mirror := &fakeMirror{err: errors.New("sheets unavailable")}
	periods := NewPeriodService(repo, aggregate.Options{}, cache.NewLRUCache[core.ArchivedPeriod](4, time.Hour), mirror).WithClock(clock)

	if _, err := fin.CreateIncome(ctx, core.Income{Category: "Donation", Amount: core.Money{Cents: 10000}}); err != nil {
		t.Fatal(err)
	}
	if _, err := fin.CreateInventoryItem(ctx, core.InventoryItem{ItemName: "Piano", Category: "Music", Quantity: 1, Condition: core.ConditionGood}); err != nil {
		t.Fatal(err)
	}

	ap, err := periods.YearReset(ctx, 0)
	if err != nil {
		t.Fatalf("YearReset() error = %v", err)
	}
	if ap.Year != 2025 || ap.TotalRevenue().Cents != 10000 {
		t.Errorf("unexpected archive %+v", ap)
	}
	if len(mirror.years) != 1 {
		t.Errorf("mirror writes = %v", mirror.years)
	}

	income, _ := repo.ListIncome(ctx, store.IncomeFilter{})
	inventory, _ := repo.ListInventory(ctx)
	if len(income) != 0 || len(inventory) != 1 {
		t.Errorf("after reset income=%d inventory=%d", len(income), len(inventory))
	}

	if _, err := periods.YearReset(ctx, 2025); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	years, err := periods.HistoricalYears(ctx)
	if err != nil || len(years) != 1 || years[0] != 2025 {
		t.Fatalf("HistoricalYears() = %v, %v", years, err)
	}
}

func TestPeriodService_HistoricalPeriodCached(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	archiver := &countingArchiver{PeriodArchiver: repo}
	periods := NewPeriodService(archiver, aggregate.Options{}, cache.NewLRUCache[core.ArchivedPeriod](4, time.Hour), nil)

	if _, err := repo.ArchivePeriod(ctx, 2023, func(core.Snapshot) core.ArchivedPeriod { return core.ArchivedPeriod{} }); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		ap, err := periods.HistoricalPeriod(ctx, 2023)
		if err != nil || ap.Year != 2023 {
			t.Fatalf("HistoricalPeriod() = %+v, %v", ap, err)
		}
	}
	if archiver.reads != 1 {
		t.Errorf("store reads = %d, want 1", archiver.reads)
	}

	if _, err := periods.HistoricalPeriod(ctx, 1999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPeriodService_InvalidYear(t *testing.T) {
	periods := NewPeriodService(memory.New(), aggregate.Options{}, nil, nil)
	if _, err := periods.YearReset(context.Background(), 12); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

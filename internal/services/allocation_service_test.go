package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/ledger"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/store/memory"
)

func TestAllocateIncome_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	in, err := repo.CreateIncome(ctx, core.Income{
		Category: "Tithe - Ama", Amount: core.Money{Cents: 10001}, Date: core.NewDate(2025, 3, 9), Kind: core.TitheIncome,
	})
	if err != nil {
		t.Fatal(err)
	}
	svc := NewAllocationService(repo)

	first, created, err := svc.AllocateIncome(ctx, in.ID)
	if err != nil || !created {
		t.Fatalf("first AllocateIncome() = %v, %v", created, err)
	}
	second, created, err := svc.AllocateIncome(ctx, in.ID)
	if err != nil || created || second.ID != first.ID {
		t.Fatalf("second AllocateIncome() = %+v, %v, %v", second, created, err)
	}

	autos, _ := repo.ListAutoDistrict(ctx)
	if len(autos) != 1 {
		t.Fatalf("auto entries = %d, want 1", len(autos))
	}
	a := autos[0]
	if a.Source != "Tithe Allocation" || a.Description != "Tithe - Ama" || a.SourceRef != store.IncomeRef(in.ID) {
		t.Errorf("unexpected entry %+v", a)
	}
	if a.OriginalAmount.Cents != 10001 || a.DistrictAmount.Cents != 7701 || a.Status != core.StatusPending {
		t.Errorf("unexpected amounts %+v", a)
	}
}

func TestAllocateIncome_PlainAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	in, _ := repo.CreateIncome(ctx, core.Income{Category: "Donation", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1)})
	svc := NewAllocationService(repo)

	if _, created, err := svc.AllocateIncome(ctx, in.ID); err != nil || created {
		t.Fatalf("plain income: created=%v err=%v", created, err)
	}
	if _, _, err := svc.AllocateIncome(ctx, 404); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateIncome(ctx, core.Income{
			Category: "Offering", Amount: core.Money{Cents: 1000}, Date: core.NewDate(2025, 2, 2), Kind: core.OfferingIncome,
		}); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewAllocationService(repo)

	allocated, failed, err := svc.ProcessPending(ctx, 2)
	if err != nil || allocated != 2 || failed != 0 {
		t.Fatalf("first batch = %d/%d, %v", allocated, failed, err)
	}
	allocated, _, _ = svc.ProcessPending(ctx, 2)
	if allocated != 1 {
		t.Fatalf("second batch allocated %d, want 1", allocated)
	}
	pending, _ := repo.PendingAllocations(ctx, 0)
	if len(pending) != 0 {
		t.Errorf("pending = %d", len(pending))
	}
}

func TestAutoEntryDescription(t *testing.T) {
	tests := []struct {
		name     string
		kind     core.IncomeKind
		category string
		want     string
	}{
		{"tithe category already labelled", core.TitheIncome, "Tithe - Ama", "Tithe - Ama"},
		{"bare tithe category", core.TitheIncome, "Ama", "Tithe - Ama"},
		{"offering category already labelled", core.OfferingIncome, "Offering - Week 3", "Offering - Week 3"},
		{"bare offering category", core.OfferingIncome, "General", "Offering - General"},
		{"label without separator", core.TitheIncome, "Tithes", "Tithe - Tithes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoEntryFor(core.Income{ID: 1, Category: tt.category, Amount: core.Money{Cents: 1000}, Kind: tt.kind})
			if got.Description != tt.want {
				t.Errorf("Description = %q, want %q", got.Description, tt.want)
			}
		})
	}
}

func TestRecordTitheAutoEntryHasSinglePrefix(t *testing.T) {
	ctx := context.Background()
	fin, repo := newFinance(t, nil)
	post, err := fin.RecordTithe(ctx, ledger.Entry{MemberName: "Ama", Month: 2, Week: 1, Amount: core.Money{Cents: 5000}})
	if err != nil {
		t.Fatal(err)
	}
	a, _, err := NewAllocationService(repo).AllocateIncome(ctx, post.Income.ID)
	if err != nil {
		t.Fatal(err)
	}
	if a.Description != "Tithe - Ama" {
		t.Errorf("Description = %q, want %q", a.Description, "Tithe - Ama")
	}
}

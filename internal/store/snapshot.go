package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Afatsiawu/FMS/internal/core"
)

// SnapshotSource is implemented by readers that assemble a snapshot
// themselves, typically to carry the data quality warnings of decoding.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// FetchSnapshot reads every source list of r concurrently. The first
// failure cancels the remaining calls.
func FetchSnapshot(ctx context.Context, r Reader) (core.Snapshot, error) {
	if src, ok := r.(SnapshotSource); ok {
		return src.Snapshot(ctx)
	}

	var s core.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Income, err = r.ListIncome(gctx, IncomeFilter{})
		return wrap("income", err)
	})
	g.Go(func() (err error) {
		s.Tithes, err = r.ListTithes(gctx, AllMonths)
		return wrap("tithes", err)
	})
	g.Go(func() (err error) {
		s.Offerings, err = r.ListOfferings(gctx, AllMonths)
		return wrap("offerings", err)
	})
	g.Go(func() (err error) {
		s.Expenses, err = r.ListExpenses(gctx, "")
		return wrap("expenses", err)
	})
	g.Go(func() (err error) {
		s.AutoDistrict, err = r.ListAutoDistrict(gctx)
		return wrap("district expenses", err)
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return s, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return nil
}

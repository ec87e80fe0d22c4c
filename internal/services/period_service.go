package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/cache"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/sheets"
	"github.com/Afatsiawu/FMS/internal/store"
)

// PeriodService closes a year and serves the archive. Archived periods
// never change, so reads go through the cache.
type PeriodService struct {
	archiver store.PeriodArchiver
	opts     aggregate.Options
	history  cache.Cache[core.ArchivedPeriod]
	mirror   sheets.ArchiveWriter
	now      func() time.Time
}

// NewPeriodService wires the service. history and mirror may be nil.
func NewPeriodService(archiver store.PeriodArchiver, opts aggregate.Options, history cache.Cache[core.ArchivedPeriod], mirror sheets.ArchiveWriter) *PeriodService {
	return &PeriodService{
		archiver: archiver,
		opts:     opts,
		history:  history,
		mirror:   mirror,
		now:      time.Now,
	}
}

func (s *PeriodService) WithClock(now func() time.Time) *PeriodService {
	s.now = now
	return s
}

// YearReset archives the active period as year, the current year when
// year is zero, and clears the active records.
func (s *PeriodService) YearReset(ctx context.Context, year int) (core.ArchivedPeriod, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if year < 1900 || year > 9999 {
		return core.ArchivedPeriod{}, core.NewValidationError("year", "invalid year")
	}

	ap, err := s.archiver.ArchivePeriod(ctx, year, func(snap core.Snapshot) core.ArchivedPeriod {
		return aggregate.Archive(snap, year, s.opts, now)
	})
	if err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("archive %d: %w", year, err)
	}
	slog.InfoContext(ctx, "Year archived",
		"year", year,
		"transactions", len(ap.Transactions),
		"revenue_cents", ap.TotalRevenue().Cents,
		"expense_cents", ap.TotalExpenses().Cents)

	if s.history != nil {
		s.history.Set(cacheKey(year), ap)
	}
	if s.mirror != nil {
		if sheet, err := s.mirror.WriteArchive(ctx, ap); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror archive", "year", year, "error", err)
		} else {
			slog.InfoContext(ctx, "Archive mirrored", "year", year, "sheet", sheet)
		}
	}
	return ap, nil
}

func (s *PeriodService) HistoricalYears(ctx context.Context) ([]int, error) {
	years, err := s.archiver.HistoricalYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("historical years: %w", err)
	}
	if years == nil {
		years = []int{}
	}
	return years, nil
}

func (s *PeriodService) HistoricalPeriod(ctx context.Context, year int) (core.ArchivedPeriod, error) {
	if s.history != nil {
		if ap, ok := s.history.Get(cacheKey(year)); ok {
			return ap, nil
		}
	}
	ap, err := s.archiver.HistoricalPeriod(ctx, year)
	if err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("historical period %d: %w", year, err)
	}
	if s.history != nil {
		s.history.Set(cacheKey(year), ap)
	}
	return ap, nil
}

func cacheKey(year int) string { return strconv.Itoa(year) }

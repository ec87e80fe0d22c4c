package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/export"
	"github.com/Afatsiawu/FMS/internal/feed"
	"github.com/Afatsiawu/FMS/internal/ledger"
	"github.com/Afatsiawu/FMS/internal/store"
)

// ReportService computes every read view from a fresh snapshot of the
// reader. Nothing is cached between calls.
type ReportService struct {
	reader    store.Reader
	opts      aggregate.Options
	feedLimit int
	now       func() time.Time
	logger    *slog.Logger
}

func NewReportService(reader store.Reader, opts aggregate.Options, feedLimit int) *ReportService {
	if feedLimit <= 0 {
		feedLimit = feed.DefaultLimit
	}
	return &ReportService{
		reader:    reader,
		opts:      opts,
		feedLimit: feedLimit,
		now:       time.Now,
		logger:    slog.Default().With("component", "reports"),
	}
}

func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) today() core.Date { return core.DateOf(s.now()) }

// Snapshot fetches the source lists and logs the warnings found while
// reading them.
func (s *ReportService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	snap, err := store.FetchSnapshot(ctx, s.reader)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	core.LogWarnings(s.logger, snap.Warnings)
	return snap, nil
}

// Dashboard returns the totals of day, today when day is zero.
func (s *ReportService) Dashboard(ctx context.Context, day core.Date) (aggregate.DailyTotals, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.DailyTotals{}, err
	}
	if day.IsZero() {
		day = s.today()
	}
	return aggregate.Dashboard(snap, day, s.opts), nil
}

// Report builds the weekly, monthly or yearly report around anchor.
func (s *ReportService) Report(ctx context.Context, p aggregate.Period, anchor core.Date) (aggregate.Report, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.Report{}, err
	}
	if anchor.IsZero() {
		anchor = s.today()
	}
	return aggregate.PeriodReport(snap, p, aggregate.PeriodRange(p, anchor), s.opts), nil
}

// ProfitLoss builds the statement for r. An open range covers every record.
func (s *ReportService) ProfitLoss(ctx context.Context, r core.DateRange) (aggregate.ProfitLoss, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.ProfitLoss{}, err
	}
	pl := aggregate.ProfitAndLoss(snap, r, s.opts)
	core.LogWarnings(s.logger, pl.Warnings)
	pl.Warnings = append(pl.Warnings, snap.Warnings...)
	return pl, nil
}

// Transactions returns the newest limit feed rows; limit <= 0 uses the
// configured default.
func (s *ReportService) Transactions(ctx context.Context, limit int) ([]feed.Transaction, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.feedLimit
	}
	rows, warnings := feed.Merge(feed.SourcesFromSnapshot(snap), limit, s.today())
	core.LogWarnings(s.logger, warnings)
	return rows, nil
}

func (s *ReportService) DistrictLedger(ctx context.Context) ([]core.DistrictLedgerEntry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.DistrictLedger(snap), nil
}

// MonthView lists the member tithes and the general offering of month.
func (s *ReportService) MonthView(ctx context.Context, month int) (ledger.MonthView, error) {
	if !core.ValidMonth(month) {
		return ledger.MonthView{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	tithes, err := s.reader.ListTithes(ctx, month)
	if err != nil {
		return ledger.MonthView{}, fmt.Errorf("list tithes: %w", err)
	}
	offerings, err := s.reader.ListOfferings(ctx, month)
	if err != nil {
		return ledger.MonthView{}, fmt.Errorf("list offerings: %w", err)
	}
	return ledger.MonthListing(month, tithes, offerings), nil
}

// Export writes the active period as an xlsx workbook.
func (s *ReportService) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	pl := aggregate.ProfitAndLoss(snap, core.DateRange{}, s.opts)
	if err := export.Write(w, snap, aggregate.DistrictLedger(snap), pl); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Package ledger maintains the weekly member tithe and offering grids.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
)

// Entry is one week's contribution.
type Entry struct {
	MemberID   string
	MemberName string
	Month      int // 0-11
	Week       int // 1-5
	Amount     core.Money
}

// Normalize trims the names and defaults MemberID to MemberName.
func (e Entry) Normalize() Entry {
	e.MemberName = strings.TrimSpace(e.MemberName)
	e.MemberID = strings.TrimSpace(e.MemberID)
	if e.MemberID == "" {
		e.MemberID = e.MemberName
	}
	return e
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.MemberName) == "" {
		return &core.ValidationError{Field: "memberName", Err: core.ErrEmptyMemberName}
	}
	if !core.ValidMonth(e.Month) {
		return &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	if !core.ValidWeek(e.Week) {
		return &core.ValidationError{Field: "week", Err: core.ErrInvalidWeek}
	}
	if err := e.Amount.Validate(); err != nil {
		return &core.ValidationError{Field: "amount", Err: err}
	}
	return nil
}

// Apply is the upsert step. It sets one week, keeps the others, recomputes
// the total and stamps today's date.
func Apply(existing *core.LedgerRecord, e Entry, today core.Date) (core.LedgerRecord, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}
	var rec core.LedgerRecord
	if existing != nil {
		rec = existing.Clone()
	} else {
		rec = core.LedgerRecord{MemberID: e.MemberID, MemberName: e.MemberName, Month: e.Month}
	}
	amount := e.Amount
	rec.Weeks[e.Week-1] = &amount
	rec.Total = rec.Sum()
	rec.Date = today
	return rec, nil
}

// MonthView is the ledger of one month.
type MonthView struct {
	Month           int
	Members         []core.LedgerRecord
	GeneralOffering *core.LedgerRecord
}

// MonthListing builds a MonthView from the raw records. Members are sorted
// by name and the general offering never appears among them.
func MonthListing(month int, tithes, offerings []core.LedgerRecord) MonthView {
	view := MonthView{Month: month}
	for _, r := range tithes {
		if r.Month != month || r.IsGeneralOffering() {
			continue
		}
		view.Members = append(view.Members, r)
	}
	sort.SliceStable(view.Members, func(i, j int) bool {
		return view.Members[i].MemberName < view.Members[j].MemberName
	})
	for i := range offerings {
		if offerings[i].Month == month && offerings[i].IsGeneralOffering() {
			g := offerings[i]
			view.GeneralOffering = &g
			break
		}
	}
	return view
}

// Service runs ledger upserts against the store.
type Service struct {
	tithes    store.TitheStore
	offerings store.OfferingStore
	now       func() time.Time
}

func NewService(tithes store.TitheStore, offerings store.OfferingStore) *Service {
	return &Service{tithes: tithes, offerings: offerings, now: time.Now}
}

// WithClock replaces the clock used to stamp record dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() core.Date { return core.DateOf(s.now()) }

// UpsertWeek records a member's tithe for one week of a month.
func (s *Service) UpsertWeek(ctx context.Context, e Entry) (core.LedgerRecord, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}
	today := s.today()
	rec, err := s.tithes.UpsertTithe(ctx, e.MemberID, e.Month, func(existing *core.LedgerRecord) (core.LedgerRecord, error) {
		return Apply(existing, e, today)
	})
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("upsert tithe: %w", err)
	}
	slog.DebugContext(ctx, "Tithe week recorded",
		"member_id", e.MemberID, "month", e.Month, "week", e.Week, "total_cents", rec.Total.Cents)
	return rec, nil
}

// UpsertGeneralOffering records the congregation-wide offering for one week.
func (s *Service) UpsertGeneralOffering(ctx context.Context, month, week int, amount core.Money) (core.LedgerRecord, error) {
	return s.UpsertMemberOffering(ctx, Entry{
		MemberID:   core.GeneralOfferingName,
		MemberName: core.GeneralOfferingName,
		Month:      month,
		Week:       week,
		Amount:     amount,
	})
}

// UpsertMemberOffering records a named offering. It is keyed like a tithe.
func (s *Service) UpsertMemberOffering(ctx context.Context, e Entry) (core.LedgerRecord, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}
	today := s.today()
	rec, err := s.offerings.UpsertOffering(ctx, e.MemberID, e.Month, func(existing *core.LedgerRecord) (core.LedgerRecord, error) {
		return Apply(existing, e, today)
	})
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("upsert offering: %w", err)
	}
	return rec, nil
}

// ListForMonth returns the member rows and the general offering of month.
func (s *Service) ListForMonth(ctx context.Context, month int) (MonthView, error) {
	if !core.ValidMonth(month) {
		return MonthView{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	tithes, err := s.tithes.ListTithes(ctx, month)
	if err != nil {
		return MonthView{}, fmt.Errorf("list tithes: %w", err)
	}
	offerings, err := s.offerings.ListOfferings(ctx, month)
	if err != nil {
		return MonthView{}, fmt.Errorf("list offerings: %w", err)
	}
	return MonthListing(month, tithes, offerings), nil
}

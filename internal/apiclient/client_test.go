package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/cache"
	"github.com/Afatsiawu/FMS/internal/core"
	fmshttp "github.com/Afatsiawu/FMS/internal/http"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/store/memory"
)

func fixedNow() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: url, Timeout: 5 * time.Second, Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// startServer runs the real API over an in-memory store.
func startServer(t *testing.T) (*httptest.Server, *services.FinanceService) {
	t.Helper()
	repo := memory.New().WithClock(fixedNow)
	opts := aggregate.Options{Channels: aggregate.ChannelsLedger}
	finance := services.NewFinanceService(repo, nil).WithClock(fixedNow)
	srv := fmshttp.NewServer(":0", fmshttp.Services{
		Finance: finance,
		Reports: services.NewReportService(repo, opts, 10).WithClock(fixedNow),
		Periods: services.NewPeriodService(repo, opts, cache.NewLRUCache[core.ArchivedPeriod](2, 0), nil).WithClock(fixedNow),
	}, fmshttp.Options{RateLimitPerMinute: 1000, Logger: applog.New(applog.Config{Output: io.Discard})})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts, finance
}

func post(t *testing.T, ts *httptest.Server, path, body string) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Fatalf("POST %s: status %d", path, resp.StatusCode)
	}
}

func TestClientComputesViewsLikeTheServer(t *testing.T) {
	ts, _ := startServer(t)
	post(t, ts, "/api/tithes", `{"memberName":"Ama","month":2,"week":1,"amount":100}`)
	post(t, ts, "/api/offerings", `{"month":2,"week":2,"amount":50}`)
	post(t, ts, "/api/income", `{"category":"Donation","amount":20,"date":"2025-03-09"}`)
	post(t, ts, "/api/expenses", `{"category":"Utilities","description":"Power","amount":30,"date":"2025-03-09"}`)
	post(t, ts, "/api/expenses", `{"category":"Levy","description":"National levy","amount":5,"date":"2025-03-09","expense_type":"national"}`)

	c := newClient(t, ts.URL)
	snap, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Tithes) != 1 || len(snap.Offerings) != 1 || len(snap.Expenses) != 2 || len(snap.Warnings) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}

	reports := services.NewReportService(c, aggregate.Options{Channels: aggregate.ChannelsLedger}, 10).WithClock(fixedNow)
	d, err := reports.Dashboard(context.Background(), core.Date{})
	if err != nil {
		t.Fatal(err)
	}
	// 100 + 50 from the ledger at 23% plus the plain 20.
	if d.LocalIncome.Cents != 3450+2000 {
		t.Errorf("local income = %d", d.LocalIncome.Cents)
	}

	view, err := reports.MonthView(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Members) != 1 || view.GeneralOffering == nil {
		t.Errorf("month view = %+v", view)
	}

	national, err := c.ListExpenses(context.Background(), core.NationalExpense)
	if err != nil || len(national) != 1 || national[0].Tier != core.NationalExpense {
		t.Errorf("national = %+v, %v", national, err)
	}

	tithe := core.TitheIncome
	rows, err := c.ListIncome(context.Background(), store.IncomeFilter{Kind: &tithe})
	if err != nil || len(rows) != 1 || rows[0].Kind != core.TitheIncome {
		t.Errorf("tithe income = %+v, %v", rows, err)
	}
}

func TestSnapshotCollectsDataQualityWarnings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/income":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"category":"Donation","amount":"abc","date":"2025-03-09"}],"count":1}`)
		case "/api/tithes":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"id":2,"member_name":"Ama","month":2,"date":"??","week1_amount":10,"total_amount":10}],"count":1}`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	defer ts.Close()

	snap, err := newClient(t, ts.URL).Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Warnings) != 2 {
		t.Fatalf("warnings = %v", snap.Warnings)
	}
	if snap.Income[0].Amount.Cents != 0 || !snap.Tithes[0].Date.IsZero() {
		t.Errorf("defaults not applied: %+v %+v", snap.Income[0], snap.Tithes[0])
	}
}

func TestClientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/historical-data/"):
			http.NotFound(w, r)
		case r.URL.Path == "/api/historical-years":
			_, _ = io.WriteString(w, `{"years":null}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer ts.Close()
	c := newClient(t, ts.URL)

	_, err := c.Snapshot(context.Background())
	var nerr *core.NetworkError
	if !errors.As(err, &nerr) || nerr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("snapshot error = %v", err)
	}

	if _, err := c.HistoricalPeriod(context.Background(), 2020); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("historical period error = %v", err)
	}
	years, err := c.HistoricalYears(context.Background())
	if err != nil || years == nil || len(years) != 0 {
		t.Errorf("years = %v, %v", years, err)
	}
}

func TestNewRejectsBadURLs(t *testing.T) {
	for _, u := range []string{"", "localhost:8081", "ftp://host", "http://"} {
		if _, err := New(Options{BaseURL: u}); err == nil {
			t.Errorf("New(%q) accepted", u)
		}
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newClient(t, url).ListAutoDistrict(context.Background())
	var nerr *core.NetworkError
	if !errors.As(err, &nerr) || nerr.StatusCode != 0 || nerr.Err == nil {
		t.Fatalf("err = %v", err)
	}
}

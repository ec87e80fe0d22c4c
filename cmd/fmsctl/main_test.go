package main

import (
	"bytes"
	"context"
	"io"
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
	"github.com/Afatsiawu/FMS/internal/store/memory"
)

func fixedNow() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := memory.New().WithClock(fixedNow)
	opts := aggregate.Options{Channels: aggregate.ChannelsLedger}
	srv := fmshttp.NewServer(":0", fmshttp.Services{
		Finance: services.NewFinanceService(repo, nil).WithClock(fixedNow),
		Reports: services.NewReportService(repo, opts, 10).WithClock(fixedNow),
		Periods: services.NewPeriodService(repo, opts, cache.NewLRUCache[core.ArchivedPeriod](2, 0), nil).WithClock(fixedNow),
	}, fmshttp.Options{RateLimitPerMinute: 1000, Logger: applog.New(applog.Config{Output: io.Discard})})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	for path, body := range map[string]string{
		"/api/tithes":   `{"memberName":"Ama","month":2,"week":1,"amount":100}`,
		"/api/income":   `{"category":"Donation","amount":20,"date":"2025-03-09"}`,
		"/api/expenses": `{"category":"Utilities","description":"Power","amount":30,"date":"2025-03-09"}`,
	} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			t.Fatalf("POST %s: status %d", path, resp.StatusCode)
		}
	}
	return ts
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunViews(t *testing.T) {
	ts := startServer(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"dashboard", []string{"dashboard", "-date", "2025-03-09"}, []string{"Dashboard", "2025-03-09", "Local expenses", "₵30.00"}},
		{"month", []string{"month", "2"}, []string{"March", "Ama", "₵100.00"}},
		{"feed", []string{"feed", "-limit", "5"}, []string{"DATE", "Power"}},
		{"pl", []string{"pl", "-start", "2025-01-01", "-end", "2025-12-31"}, []string{"Profit and Loss", "Donation", "₵20.00"}},
		{"report", []string{"report", "monthly", "-date", "2025-03-09"}, []string{"monthly report", "Utilities"}},
		{"history empty", []string{"history"}, []string{"No archived years"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-url", ts.URL, "-channels", "ledger"}, tt.args...)
			code, out, errOut := runCmd(t, args...)
			if code != 0 {
				t.Fatalf("exit %d, stderr %q", code, errOut)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRunPrintsPlaceholderOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	code, out, errOut := runCmd(t, "-url", ts.URL, "dashboard")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(out, "dashboard: error loading") {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(errOut, "boom") {
		t.Errorf("server body leaked to stderr: %q", errOut)
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"-url", "http://localhost:1", "nope"},
		{"-url", "http://localhost:1", "month", "12"},
		{"-url", "http://localhost:1", "report", "daily"},
		{"-url", "http://localhost:1", "pl", "-start", "2025-02-01", "-end", "2025-01-01"},
		{"-url", "ftp://example.com", "dashboard"},
		{"-channels", "sideways", "dashboard"},
	}
	for _, args := range tests {
		if code, _, _ := runCmd(t, args...); code != 2 {
			t.Errorf("run(%v) = %d, want 2", args, code)
		}
	}
}

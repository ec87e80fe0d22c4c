package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/cache"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/export"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
	"github.com/Afatsiawu/FMS/internal/store/memory"
)

func fixedNow() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	repo := memory.New().WithClock(fixedNow)
	opts := aggregate.Options{Channels: aggregate.ChannelsAsRecorded}
	svc := Services{
		Finance: services.NewFinanceService(repo, nil).WithClock(fixedNow),
		Reports: services.NewReportService(repo, opts, 10).WithClock(fixedNow),
		Periods: services.NewPeriodService(repo, opts, cache.NewLRUCache[core.ArchivedPeriod](4, 0), nil).WithClock(fixedNow),
	}
	srv := NewServer(":0", svc, Options{
		RateLimitPerMinute: rateLimit,
		Logger:             applog.New(applog.Config{Output: io.Discard}),
	})
	t.Cleanup(srv.limiter.Stop)
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, 60)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: missing request id", path)
		}
	}
}

func TestCreateIncomeAllocatesAndRefreshes(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := do(t, srv, http.MethodPost, "/api/income",
		`{"category":"Sunday Tithe","amount":100,"date":"2025-03-09","is_tithe":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		Success        bool    `json:"success"`
		ID             int64   `json:"id"`
		LocalAmount    float64 `json:"local_amount"`
		DistrictAmount float64 `json:"district_amount"`
	}
	decode(t, rr, &created)
	if !created.Success || created.LocalAmount != 23 || created.DistrictAmount != 77 {
		t.Fatalf("unexpected response %+v", created)
	}
	if refresh := rr.Header().Get(HeaderRefreshViews); !strings.Contains(refresh, ViewDashboard) || !strings.Contains(refresh, ViewIncome) {
		t.Errorf("refresh header = %q", refresh)
	}

	rr = do(t, srv, http.MethodGet, "/api/district-expenses", "")
	var district []map[string]any
	decode(t, rr, &district)
	if len(district) != 1 || district[0]["districtAmount"] != 77.0 {
		t.Fatalf("auto district entries = %v", district)
	}

	rr = do(t, srv, http.MethodGet, "/api/income?is_tithe=true", "")
	var list struct {
		Count  int `json:"count"`
		Totals struct {
			TotalDistrict float64 `json:"total_district"`
		} `json:"totals"`
	}
	decode(t, rr, &list)
	if list.Count != 1 || list.Totals.TotalDistrict != 77 {
		t.Fatalf("income list = %+v", list)
	}

	rr = do(t, srv, http.MethodGet, "/api/dashboard", "")
	var dash struct {
		LocalIncome float64 `json:"local_income"`
	}
	decode(t, rr, &dash)
	if dash.LocalIncome != 23 {
		t.Errorf("dashboard local income = %v, want 23", dash.LocalIncome)
	}
}

func TestCreateIncomeValidation(t *testing.T) {
	srv := newTestServer(t, 100)
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing category", `{"amount":10}`, "category"},
		{"tithe and offering", `{"category":"x","amount":10,"is_tithe":true,"is_offering":true}`, "is_tithe"},
		{"zero amount", `{"category":"x","amount":0}`, "amount"},
		{"bad date", `{"category":"x","amount":10,"date":"09/03/2025"}`, "date"},
		{"malformed json", `{"category":`, "body"},
		{"amount beyond int64 cents", `{"category":"x","amount":200000000000000000,"is_tithe":true}`, "amount"},
		{"amount past the cap", `{"category":"x","amount":92233720368547758}`, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/income", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			var resp struct {
				Success bool              `json:"success"`
				Fields  map[string]string `json:"fields"`
			}
			decode(t, rr, &resp)
			if resp.Success {
				t.Error("success must be false")
			}
			if _, ok := resp.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want key %q", resp.Fields, tt.field)
			}
		})
	}
}

func TestOversizedAmountsAreNotStored(t *testing.T) {
	srv := newTestServer(t, 100)
	for _, req := range []struct{ path, body string }{
		{"/api/income", `{"category":"x","amount":200000000000000000,"is_tithe":true}`},
		{"/api/tithes", `{"memberName":"Ama","month":2,"week":1,"amount":"1e30"}`},
		{"/api/expenses", `{"category":"x","description":"y","amount":92233720368547758,"date":"2025-03-09"}`},
	} {
		if rr := do(t, srv, http.MethodPost, req.path, req.body); rr.Code != http.StatusBadRequest {
			t.Errorf("POST %s: status=%d body=%s", req.path, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, srv, http.MethodGet, "/api/income", "")
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rr, &list)
	if list.Count != 0 {
		t.Fatalf("expected no stored income, got %d rows", list.Count)
	}
}

func TestLedgerPostsAndMonthView(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := do(t, srv, http.MethodPost, "/api/tithes", `{"memberName":"Ama Owusu","month":2,"week":1,"amount":50}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("tithe status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPost, "/api/tithes", `{"memberName":"Ama Owusu","month":2,"week":3,"amount":25}`)
	var posted struct {
		Total    float64 `json:"total"`
		IncomeID int64   `json:"income_id"`
	}
	decode(t, rr, &posted)
	if posted.Total != 75 || posted.IncomeID == 0 {
		t.Fatalf("second week = %+v", posted)
	}

	rr = do(t, srv, http.MethodPost, "/api/offerings", `{"month":2,"week":1,"amount":20}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("offering status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/tithes/month/2", "")
	var view struct {
		Members []struct {
			MemberName string   `json:"member_name"`
			Week2      *float64 `json:"week2_amount"`
		} `json:"members"`
		GeneralOffering *struct {
			Total float64 `json:"total"`
		} `json:"general_offering"`
	}
	decode(t, rr, &view)
	if len(view.Members) != 1 || view.Members[0].MemberName != "Ama Owusu" || view.Members[0].Week2 != nil {
		t.Fatalf("members = %+v", view.Members)
	}
	if view.GeneralOffering == nil || view.GeneralOffering.Total != 20 {
		t.Fatalf("general offering = %+v", view.GeneralOffering)
	}

	rr = do(t, srv, http.MethodPost, "/api/tithes", `{"memberName":"Ama","month":12,"week":1,"amount":5}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("month 12 status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/tithes/month/12", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("month view 12 status=%d", rr.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t, 100)
	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"missing income", http.MethodDelete, "/api/income/999", http.StatusNotFound},
		{"bad id", http.MethodDelete, "/api/income/abc", http.StatusBadRequest},
		{"auto district delete", http.MethodDelete, "/api/district-expenses/1", http.StatusForbidden},
		{"pdf export", http.MethodGet, "/api/export-pdf", http.StatusNotImplemented},
		{"unknown period", http.MethodGet, "/api/reports/daily", http.StatusBadRequest},
		{"unknown endpoint", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"bad expense tier", http.MethodGet, "/api/expenses?type=regional", http.StatusBadRequest},
		{"missing archive", http.MethodGet, "/api/historical-data/1999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.target, "")
			if rr.Code != tt.want {
				t.Errorf("status=%d want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestYearResetAndHistory(t *testing.T) {
	srv := newTestServer(t, 100)
	do(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Utilities","description":"Power","amount":40,"date":"2024-11-02"}`)

	rr := do(t, srv, http.MethodPost, "/api/year-reset", `{"year":2024}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr = do(t, srv, http.MethodPost, "/api/year-reset", `{"year":2024}`); rr.Code != http.StatusConflict {
		t.Fatalf("second reset status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/historical-years", "")
	var years struct {
		Years []int `json:"years"`
	}
	decode(t, rr, &years)
	if len(years.Years) != 1 || years.Years[0] != 2024 {
		t.Fatalf("years = %v", years.Years)
	}

	rr = do(t, srv, http.MethodGet, "/api/historical-data/2024", "")
	var hist struct {
		PL struct {
			Expenses map[string]float64 `json:"expenses"`
		} `json:"pl"`
	}
	decode(t, rr, &hist)
	if len(hist.PL.Expenses) == 0 {
		t.Fatalf("archived expenses missing: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses", "")
	var active []any
	decode(t, rr, &active)
	if len(active) != 0 {
		t.Errorf("active expenses after reset = %v", active)
	}
}

func TestExportWorkbook(t *testing.T) {
	srv := newTestServer(t, 100)
	rr := do(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != export.ContentType {
		t.Errorf("content type = %q", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Error("body is not a zip container")
	}
}

func TestMutatingRequestsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, 1)
	body := `{"itemName":"Chairs","category":"Furniture","quantity":40,"condition":"Good"}`

	if rr := do(t, srv, http.MethodPost, "/api/inventory", body); rr.Code != http.StatusCreated {
		t.Fatalf("first status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr := do(t, srv, http.MethodPost, "/api/inventory", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if rr := do(t, srv, http.MethodGet, "/api/inventory", ""); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited, status=%d", rr.Code)
	}
}

package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/wire"
)

func TestDecodeJSON_ValidationUsesJSONNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"memberName":"","week":7}`))
	var body wire.TitheRequest
	err := DecodeJSON(httptest.NewRecorder(), req, &body)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	fields := fieldMessages(verrs)
	for _, f := range []string{"memberName", "month", "week"} {
		if fields[f] == "" {
			t.Errorf("missing message for %s in %v", f, fields)
		}
	}
	if fields["week"] != "must be at most 5" {
		t.Errorf("week message = %q", fields["week"])
	}
}

func TestDecodeJSON_EmptyBodyAndTypeErrors(t *testing.T) {
	var reset wire.YearResetRequest
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeJSON(httptest.NewRecorder(), req, &reset); err != nil || reset.Year != 0 {
		t.Fatalf("empty body: %v %+v", err, reset)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"year":"soon"}`))
	err := DecodeJSON(httptest.NewRecorder(), req, &reset)
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "year" {
		t.Fatalf("type error = %v", err)
	}
}

func TestQueryHelpers(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantMonth int
		wantErr   bool
	}{
		{"absent", "/", store.AllMonths, false},
		{"january", "/?month=0", 0, false},
		{"december", "/?month=11", 11, false},
		{"out of range", "/?month=12", 0, true},
		{"not a number", "/?month=may", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := queryMonth(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tt.wantErr && m != tt.wantMonth {
				t.Errorf("month = %d, want %d", m, tt.wantMonth)
			}
		})
	}

	r := httptest.NewRequest(http.MethodGet, "/?limit=x&date=2025-02-30", nil)
	if got := queryInt(r, "limit", 10); got != 10 {
		t.Errorf("queryInt fallback = %d", got)
	}
	if _, err := queryDate(r, "date"); err == nil {
		t.Error("expected invalid date error")
	}
}

func TestIncomeKindFilter(t *testing.T) {
	tithe, offering, plain := core.TitheIncome, core.OfferingIncome, core.PlainIncome
	tests := []struct {
		query   string
		want    *core.IncomeKind
		wantErr bool
	}{
		{"", nil, false},
		{"is_tithe=true", &tithe, false},
		{"is_offering=TRUE", &offering, false},
		{"is_tithe=false&is_offering=false", &plain, false},
		{"is_tithe=false", nil, false},
		{"is_tithe=true&is_offering=true", nil, true},
	}
	for _, tt := range tests {
		got, err := incomeKindFilter(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.query, err)
			continue
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("%q: kind = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Ama\x00 Owusu\t "); got != "Ama Owusu" {
		t.Errorf("sanitizeInput = %q", got)
	}
}

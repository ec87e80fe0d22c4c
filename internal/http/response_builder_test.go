package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Afatsiawu/FMS/internal/core"
)

func TestJSONResponseBuilder_RefreshHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Refresh(ViewIncome, ViewDashboard).
		RefreshFinancials(ViewIncome).
		Payload(map[string]bool{"success": true}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if got := w.Header().Get(HeaderRefreshViews); got != "income,dashboard,transactions,profit-loss,reports" {
		t.Errorf("refresh = %q", got)
	}
	if w.Header().Get("Content-Type") != "application/json" || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("unexpected response %v %s", w.Header(), w.Body.String())
	}
}

func TestJSONResponseBuilder_NoPayload(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestErrorFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("save: %w", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}), http.StatusBadRequest},
		{"not found", fmt.Errorf("income 3: %w", core.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("archive 2024: %w", core.ErrConflict), http.StatusConflict},
		{"immutable", fmt.Errorf("district expense 1: %w", core.ErrAutoEntryImmutable), http.StatusForbidden},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFrom(tt.err).Write(w)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestErrorFrom_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFrom(errors.New("select * from income: no such table")).Write(w)
	if strings.Contains(w.Body.String(), "no such table") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}

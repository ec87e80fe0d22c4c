package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Afatsiawu/FMS/internal/core"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/wire"
)

// HeaderRefreshViews lists the views a client must re-fetch after a write.
const HeaderRefreshViews = "X-Refresh-Views"

// View names carried in X-Refresh-Views.
const (
	ViewDashboard    = "dashboard"
	ViewTransactions = "transactions"
	ViewIncome       = "income"
	ViewTithes       = "tithes"
	ViewOfferings    = "offerings"
	ViewExpenses     = "expenses"
	ViewDistrict     = "district"
	ViewInventory    = "inventory"
	ViewProfitLoss   = "profit-loss"
	ViewReports      = "reports"
	ViewHistory      = "history"
)

// financialViews are invalidated by every income, ledger or expense write.
var financialViews = []string{ViewDashboard, ViewTransactions, ViewProfitLoss, ViewReports}

// JSONResponseBuilder builds a JSON response with its status, headers and
// refresh hints.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	refresh    []string
	payload    any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Refresh adds views to X-Refresh-Views. Duplicates are dropped.
func (b *JSONResponseBuilder) Refresh(views ...string) *JSONResponseBuilder {
	for _, v := range views {
		dup := false
		for _, have := range b.refresh {
			if have == v {
				dup = true
				break
			}
		}
		if !dup {
			b.refresh = append(b.refresh, v)
		}
	}
	return b
}

// RefreshFinancials adds the views computed from the whole snapshot.
func (b *JSONResponseBuilder) RefreshFinancials(views ...string) *JSONResponseBuilder {
	return b.Refresh(views...).Refresh(financialViews...)
}

func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.refresh) > 0 {
		w.Header().Set(HeaderRefreshViews, strings.Join(b.refresh, ","))
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
}

// ErrorResponse builds a {success:false} body.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Payload(wire.ErrorResponse{Success: false, Message: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// ErrorFrom maps the error taxonomy onto a status and body.
func ErrorFrom(err error) *JSONResponseBuilder {
	var (
		verrs validator.ValidationErrors
		ve    *core.ValidationError
	)
	switch {
	case errors.As(err, &verrs):
		return NewJSONResponse().
			Status(http.StatusBadRequest).
			Payload(wire.ErrorResponse{Message: "Validation failed", Fields: fieldMessages(verrs)})
	case errors.As(err, &ve):
		field := ve.Field
		if field == "" {
			field = "body"
		}
		return NewJSONResponse().
			Status(http.StatusBadRequest).
			Payload(wire.ErrorResponse{Message: ve.Error(), Fields: map[string]string{field: ve.Err.Error()}})
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, core.ErrConflict):
		return ErrorResponse(http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrAutoEntryImmutable):
		return ErrorResponse(http.StatusForbidden, core.ErrAutoEntryImmutable.Error())
	}
	return InternalServerError()
}

// writeError logs err with the request logger and writes its mapped
// response. Only server errors are logged at error level.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFrom(err)
	logger := applog.FromContext(r.Context())
	if resp.statusCode >= http.StatusInternalServerError {
		logger.LogError(r.Context(), "Request failed", err, op, applog.ErrorTypeInternal,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
	} else {
		logger.WarnContext(r.Context(), "Request rejected",
			applog.NewFields().
				WithError(err).
				WithOperation(op).
				WithErrorType(errorType(resp.statusCode)).
				ToSlice()...)
	}
	resp.Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return applog.ErrorTypeValidation
	case http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case http.StatusConflict:
		return applog.ErrorTypeConflict
	case http.StatusForbidden:
		return applog.ErrorTypeForbidden
	}
	return applog.ErrorTypeInternal
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

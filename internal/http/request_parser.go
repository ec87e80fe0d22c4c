package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON reads one JSON document into dst and checks its validate
// tags. An empty body decodes as {}.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.NewValidationError("body", "request body too large")
		}
		return fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return core.NewValidationError(typeErr.Field, "must be a "+typeErr.Type.String())
		}
		return core.NewValidationError("body", "malformed JSON")
	}
	return ValidateRequest(dst)
}

// ValidateRequest runs the validate tags of a request struct.
func ValidateRequest(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return verrs
		}
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

func fieldMessages(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return core.ErrInvalidDate.Error()
	}
	return "is invalid"
}

// queryDate parses an optional YYYY-MM-DD parameter. Missing gives the zero
// date.
func queryDate(r *http.Request, key string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: key, Err: core.ErrInvalidDate}
	}
	return d, nil
}

// bodyDate parses a validated date field; empty gives the zero date.
func bodyDate(field, v string) (core.Date, error) {
	if strings.TrimSpace(v) == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(strings.TrimSpace(v))
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Err: core.ErrInvalidDate}
	}
	return d, nil
}

// queryMonth parses the optional month filter. Missing means every month.
func queryMonth(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return store.AllMonths, nil
	}
	m, err := strconv.Atoi(v)
	if err != nil || !core.ValidMonth(m) {
		return 0, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	return m, nil
}

// queryInt returns def for a missing or unparsable value.
func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryBool returns nil when key is absent.
func queryBool(r *http.Request, key string) *bool {
	if !r.URL.Query().Has(key) {
		return nil
	}
	b := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get(key)), "true")
	return &b
}

// incomeKindFilter maps the is_tithe and is_offering flags onto a kind.
// Both false selects plain income.
func incomeKindFilter(r *http.Request) (*core.IncomeKind, error) {
	isTithe, isOffering := queryBool(r, "is_tithe"), queryBool(r, "is_offering")
	tithe := isTithe != nil && *isTithe
	offering := isOffering != nil && *isOffering

	var kind core.IncomeKind
	switch {
	case tithe && offering:
		return nil, &core.ValidationError{Field: "is_tithe", Err: core.ErrTitheAndOffering}
	case tithe:
		kind = core.TitheIncome
	case offering:
		kind = core.OfferingIncome
	case isTithe != nil && isOffering != nil:
		kind = core.PlainIncome
	default:
		return nil, nil
	}
	return &kind, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", "invalid id")
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, core.NewValidationError(name, "must be a number")
	}
	return n, nil
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

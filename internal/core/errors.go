package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountOutOfRange   = errors.New("amount out of range")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth       = errors.New("invalid month (must be 0-11)")
	ErrInvalidWeek        = errors.New("invalid week (must be 1-5)")
	ErrInvalidTier        = errors.New("invalid expense type (must be other, district or national)")
	ErrInvalidCondition   = errors.New("invalid condition (must be Excellent, Good, Fair or Poor)")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrEmptyMemberName    = errors.New("member name is required")
	ErrEmptyCategory      = errors.New("category is required")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrTitheAndOffering   = errors.New("income cannot be both tithe and offering")

	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAutoEntryImmutable = errors.New("auto-generated district entries cannot be deleted")
)

// ValidationError is a user input problem tied to one field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError with a free-form message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Err: errors.New(msg)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NetworkError is a failed call to a remote store, either a transport
// failure or a non-OK status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := e.Op + " " + e.URL
	if e.StatusCode != 0 {
		msg += ": status " + strconv.Itoa(e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataQualityWarning describes a record field that was replaced by a safe
// default. It never stops processing.
type DataQualityWarning struct {
	Source   string
	RecordID int64
	Field    string
	Detail   string
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("%s #%d: %s %s", w.Source, w.RecordID, w.Field, w.Detail)
}

// LogWarnings writes each warning at warn level.
func LogWarnings(logger *slog.Logger, warnings []DataQualityWarning) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range warnings {
		logger.Warn("Data quality warning",
			"error_type", "data_quality_warning",
			"source", w.Source,
			"record_id", w.RecordID,
			"field", w.Field,
			"detail", w.Detail)
	}
}

package utils

import (
	"time"

	"tourdesk-service/pkg/apperr"
)

const (
	// DateLayout is the canonical calendar-date form used on all surfaces.
	DateLayout = "2006-01-02"
	// legacyDateLayout is the MM/DD/YYYY form produced by older CSV exports.
	legacyDateLayout = "01/02/2006"
)

// ParseDate parses a calendar date in the canonical layout, falling back to
// the legacy CSV layout. The result is a UTC midnight instant. An empty or
// unparsable string is a validation error, never a silent zero date.
func ParseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperr.Validationf("%s is required", field)
	}
	if t, err := time.ParseInLocation(DateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(legacyDateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validationf("%s: invalid date %q", field, value)
}

// FormatDate renders an instant in the canonical calendar-date layout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

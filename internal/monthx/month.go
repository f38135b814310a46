// Package monthx contains helpers for the plaintext routing dates used by
// the vault: "YYYY-MM" months and "YYYY-MM-DD" dates. Months and dates are
// the only temporal data the server ever sees.
package monthx

import (
	"fmt"
	"time"
)

const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"

	// All marks a fetch that spans every month.
	All = "all"
)

// ValidMonth reports whether s is a well-formed "YYYY-MM" month.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// ValidDate reports whether s is a well-formed "YYYY-MM-DD" date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// CurrentMonth returns the current month in "YYYY-MM" form.
func CurrentMonth() string {
	return time.Now().Format(MonthLayout)
}

// Today returns the current date in "YYYY-MM-DD" form.
func Today() string {
	return time.Now().Format(DateLayout)
}

// OfDate returns the month a date belongs to. The date must be valid.
func OfDate(date string) string {
	if len(date) < len(MonthLayout) {
		return ""
	}
	return date[:len(MonthLayout)]
}

// Prev returns the month immediately before the given one.
func Prev(month string) (string, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t.AddDate(0, -1, 0).Format(MonthLayout), nil
}

// Days returns the number of days in the given month.
func Days(month string) (int, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return 0, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t.AddDate(0, 1, -1).Day(), nil
}

// Rebase moves a date into another month preserving its day-of-month,
// clamped to the target month's last day (Jan 31 → Feb 28/29).
func Rebase(date, toMonth string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	last, err := Days(toMonth)
	if err != nil {
		return "", err
	}
	day := d.Day()
	if day > last {
		day = last
	}
	return fmt.Sprintf("%s-%02d", toMonth, day), nil
}

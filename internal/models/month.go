package models

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// ParseMonth accepts YYYY-MM or YYYY-MM-DD and returns the first day of that
// month at midnight UTC.
func ParseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{monthLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM or YYYY-MM-DD", raw)
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the half-open interval [start, end) covering month.
func MonthRange(month time.Time) (time.Time, time.Time) {
	start := MonthStart(month)
	return start, start.AddDate(0, 1, 0)
}

// FormatMonth renders month as YYYY-MM.
func FormatMonth(month time.Time) string {
	return MonthStart(month).Format(monthLayout)
}

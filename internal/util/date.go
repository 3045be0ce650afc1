package util

import (
	"strings"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	printedDateLayout = "02.01.2006"
)

// startOfDay returns the start of the day (00:00:00) in local timezone for the given time.
func startOfDay(t time.Time) time.Time {
	localTime := t.Local()
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDateLocal parses a date string in YYYY-MM-DD format and returns it in local timezone.
// HTML date inputs submit this format.
func ParseDateLocal(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(isoDateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

// FormatExamDate renders an exam date the way it is printed on the forms
// (DD.MM.YYYY). Values that are not ISO dates are returned trimmed but
// otherwise unchanged, since some sites type the date by hand.
func FormatExamDate(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	d, err := ParseDateLocal(dateStr)
	if err != nil {
		return dateStr
	}
	return d.Format(printedDateLayout)
}

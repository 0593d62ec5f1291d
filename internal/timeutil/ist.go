package timeutil

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60) // UTC+5:30
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts any time to IST
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// FormatIST formats a time in IST using the given layout
func FormatIST(t time.Time, layout string) string {
	return t.In(IST).Format(layout)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)

// dateLayouts are the calendar date formats accepted by POS exports.
// Order matters: unambiguous ISO forms first.
var dateLayouts = []string{
	DateLayout,
	DateTimeLayout,
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate parses a POS export date value into a date in IST.
// The time-of-day portion, if present, is discarded.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, value, IST)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", value)
}

// ParseHour extracts the hour (0-23) from a HH:MM:SS time-of-day string.
func ParseHour(value string) (int, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("unparsable time %q: expected HH:MM:SS", value)
	}
	return t.Hour(), nil
}

// DayName returns the English weekday name for a date.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

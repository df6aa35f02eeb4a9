package dataprocessing

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order for text dates. Day-first layouts come
// before month-first ones because the field sheets are filled in pt-BR.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
}

// Excel serials outside this window are not treated as dates (1927..2173).
const (
	minDateSerial = 10000
	maxDateSerial = 100000
)

// CoerceTime converts a cell to a date/time cell. Excel serial numbers and the
// usual text layouts are understood; anything else becomes null.
func CoerceTime(v Value) Value {
	switch v.Kind() {
	case KindTime:
		return v
	case KindNumber:
		f, _ := v.Float()
		if f < minDateSerial || f > maxDateSerial {
			return Null()
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return Null()
		}
		return Time(t)
	case KindText:
		t, ok := ParseDate(v.String())
		if !ok {
			return Null()
		}
		return Time(t)
	}
	return Null()
}

// ParseDate parses a text date using the supported layouts
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfDay truncates t to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isDateOnly reports whether t carries no time-of-day component
func isDateOnly(t time.Time) bool {
	return t.Equal(startOfDay(t))
}

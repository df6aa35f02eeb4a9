package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies what a cell holds
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
	KindTime
)

// Value is a single table cell. The zero value is null.
type Value struct {
	kind ValueKind
	num  float64
	text string
	when time.Time
}

// Null returns an empty cell
func Null() Value {
	return Value{}
}

// Number returns a numeric cell; NaN and ±Inf are stored as null
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a text cell; blank text is stored as null
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Time returns a date/time cell
func Time(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{kind: KindTime, when: t}
}

// Kind returns the cell kind
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the cell is empty
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Float returns the numeric content of the cell
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// FloatOrZero returns the numeric content, treating anything else as zero
func (v Value) FloatOrZero() float64 {
	f, _ := v.Float()
	return f
}

// Time returns the date/time content of the cell
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.when, true
}

// String renders the cell for display and CSV export
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindTime:
		if v.when.Hour() == 0 && v.when.Minute() == 0 && v.when.Second() == 0 && v.when.Nanosecond() == 0 {
			return v.when.Format("2006-01-02")
		}
		return v.when.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Interface returns the cell as a plain Go value (nil, float64, string, time.Time)
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindTime:
		return v.when
	default:
		return nil
	}
}

// Equal compares two cells by kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindTime:
		return v.when.Equal(o.when)
	default:
		return true
	}
}

// compareValues orders cells for sorting: nulls last, then time, number, text.
func compareValues(a, b Value) int {
	if a.kind != b.kind {
		if a.kind == KindNull {
			return 1
		}
		if b.kind == KindNull {
			return -1
		}
		if a.kind == KindTime {
			return -1
		}
		if b.kind == KindTime {
			return 1
		}
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case KindText:
		return strings.Compare(a.text, b.text)
	case KindTime:
		return a.when.Compare(b.when)
	}
	return 0
}

package dataprocessing

import (
	"time"
)

// DateWindow is an inclusive [Start, End] date range
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateWindow validates and returns a window. An inverted range is an
// error; the bounds are never swapped.
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	if start.After(end) {
		return DateWindow{}, &InvalidRangeError{Start: start, End: end, Reason: "start is after end"}
	}
	return DateWindow{Start: start, End: end}, nil
}

// IsZero reports whether the window was never set
func (w DateWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// inclusiveEnd extends a date-only end bound to the last instant of that day
func (w DateWindow) inclusiveEnd() time.Time {
	if isDateOnly(w.End) {
		return startOfDay(w.End).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return w.End
}

// Contains reports whether t lies inside the window
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.inclusiveEnd())
}

// Within reports whether the window lies inside outer. outer's end is
// treated as inclusive through its whole day.
func (w DateWindow) Within(outer DateWindow) bool {
	return !w.Start.Before(startOfDay(outer.Start)) && !w.End.After(outer.inclusiveEnd())
}

// Validate checks the window against the observed span of a dataset
func (w DateWindow) Validate(span DateWindow) error {
	if w.Start.After(w.End) {
		return &InvalidRangeError{Start: w.Start, End: w.End, Reason: "start is after end"}
	}
	if !w.Within(span) {
		return &InvalidRangeError{Start: w.Start, End: w.End, Reason: "outside the observed data span"}
	}
	return nil
}

// FilterByDate keeps the rows whose date lies in [start, end]. A date-only end
// is inclusive through the whole day. Row labels of the parent table are kept.
func FilterByDate(t *Table, dateColumn string, start, end time.Time) (*Table, error) {
	w, err := NewDateWindow(start, end)
	if err != nil {
		return nil, err
	}
	return FilterWindow(t, dateColumn, w)
}

// FilterWindow is FilterByDate for an already validated window
func FilterWindow(t *Table, dateColumn string, w DateWindow) (*Table, error) {
	if err := requireColumns(t, "", dateColumn); err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool {
		d, ok := t.Value(i, dateColumn).Time()
		return ok && w.Contains(d)
	}), nil
}

// FilterIn keeps the rows whose column value is one of allowed. An empty
// allowed list keeps nothing.
func FilterIn(t *Table, column string, allowed []string) *Table {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return t.Filter(func(i int) bool {
		_, ok := set[t.Value(i, column).String()]
		return ok
	})
}

// ObservedSpan returns the earliest and latest date in the column.
// ok is false when the table holds no dates.
func ObservedSpan(t *Table, dateColumn string) (DateWindow, bool) {
	var w DateWindow
	found := false
	for _, v := range t.Column(dateColumn) {
		d, ok := v.Time()
		if !ok {
			continue
		}
		if !found || d.Before(w.Start) {
			w.Start = d
		}
		if !found || d.After(w.End) {
			w.End = d
		}
		found = true
	}
	return w, found
}

// DistinctText returns the distinct non-null values of a column in first-seen order
func DistinctText(t *Table, column string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range t.Column(column) {
		if v.IsNull() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

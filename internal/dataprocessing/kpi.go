package dataprocessing

import (
	"math"
	"time"
)

// Latest returns the position of the row with the most recent date, or -1
// for a table without dates. Ties resolve to the later row.
func Latest(t *Table, dateColumn string) int {
	pos := -1
	var best time.Time
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Value(i, dateColumn).Time()
		if !ok {
			continue
		}
		if pos < 0 || !d.Before(best) {
			pos, best = i, d
		}
	}
	return pos
}

// DaysSince returns the number of whole days between last and now, never negative
func DaysSince(last, now time.Time) int {
	d := startOfDay(now).Sub(startOfDay(last)).Hours() / 24
	if d < 0 {
		return 0
	}
	return int(math.Round(d))
}

// ActiveEntities counts the distinct values of key on rows where any of the
// reading columns is non-zero.
func ActiveEntities(t *Table, key string, readings []string) int {
	seen := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		k := t.Value(i, key)
		if k.IsNull() {
			continue
		}
		for _, c := range readings {
			if f, ok := t.Value(i, c).Float(); ok && f != 0 {
				seen[k.String()] = struct{}{}
				break
			}
		}
	}
	return len(seen)
}

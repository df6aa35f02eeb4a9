package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"fielddash/pkg/contracts/domain"
)

// AggregateSpec describes one re-aggregation of a canonical table
type AggregateSpec struct {
	DateColumn  string
	Values      []string
	Granularity domain.Granularity
	GroupKeys   []string
	Mode        domain.AggregationMode
}

// SpecForSchema builds the aggregation settings of a known sheet
func SpecForSchema(s domain.SheetSchema, values []string, g domain.Granularity) AggregateSpec {
	if len(values) == 0 {
		values = s.Values
	}
	return AggregateSpec{
		DateColumn:  domain.ColumnDate,
		Values:      values,
		Granularity: g,
		GroupKeys:   s.GroupKeys,
		Mode:        s.Mode,
	}
}

type bucket struct {
	start  time.Time
	groups []Value
	sums   []float64
	counts []int
	first  []Value
}

// Aggregate regroups the value columns of t onto the calendar grid of the
// requested granularity.
//
// Day granularity is the identity: a copy of the input comes back with no label
// column. For coarser grids each (group keys, bucket) pair holding at least one
// row yields one output row: the date column holds the bucket start and the
// Período column its label. Sum treats nulls as zero; Mean averages the
// non-null values. Other columns keep their first non-null value. Mean rows
// whose value sum is zero or missing are dropped. Rows come back ordered by
// group keys, then bucket start.
func Aggregate(t *Table, spec AggregateSpec) (*Table, error) {
	if !spec.Granularity.Valid() {
		return nil, fmt.Errorf("aggregate: unsupported granularity %q", spec.Granularity)
	}
	if err := requireColumns(t, "", spec.DateColumn); err != nil {
		return nil, err
	}
	if err := requireColumns(t, "", spec.Values...); err != nil {
		return nil, err
	}
	if err := requireColumns(t, "", spec.GroupKeys...); err != nil {
		return nil, err
	}
	if spec.Granularity == domain.GranularityDay {
		return t.Clone(), nil
	}

	role := columnRoles(t, spec)
	cols := outputColumns(t, spec)

	var order []string
	buckets := make(map[string]*bucket)
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Value(i, spec.DateColumn).Time()
		if !ok {
			continue
		}
		start := BucketStart(d, spec.Granularity)

		groups := make([]Value, len(spec.GroupKeys))
		keyParts := make([]string, 0, len(groups)+1)
		for g, k := range spec.GroupKeys {
			groups[g] = t.Value(i, k)
			keyParts = append(keyParts, groups[g].String())
		}
		keyParts = append(keyParts, start.Format(time.RFC3339))
		key := strings.Join(keyParts, "\x1f")

		b, exists := buckets[key]
		if !exists {
			b = &bucket{
				start:  start,
				groups: groups,
				sums:   make([]float64, len(spec.Values)),
				counts: make([]int, len(spec.Values)),
				first:  make([]Value, len(role.carry)),
			}
			buckets[key] = b
			order = append(order, key)
		}
		for j, c := range spec.Values {
			if f, ok := t.Value(i, c).Float(); ok {
				b.sums[j] += f
				b.counts[j]++
			}
		}
		for j, c := range role.carry {
			if b.first[j].IsNull() {
				b.first[j] = t.Value(i, c)
			}
		}
	}

	rows := make([][]Value, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		values, total, seen := b.result(spec.Mode)
		if spec.Mode == domain.AggregateMean && (!seen || total == 0) {
			continue
		}
		rows = append(rows, b.row(cols, spec, role, values))
	}

	out := newTable(cols, denseIndex(len(rows)), rows)
	sortKeys := append(append([]string{}, spec.GroupKeys...), spec.DateColumn)
	return out.SortBy(sortKeys...).ResetIndex(), nil
}

// result returns the aggregated values, their sum and whether any value was present
func (b *bucket) result(mode domain.AggregationMode) ([]Value, float64, bool) {
	out := make([]Value, len(b.sums))
	total := 0.0
	seen := false
	for j := range b.sums {
		switch {
		case mode == domain.AggregateMean && b.counts[j] == 0:
			out[j] = Null()
			continue
		case mode == domain.AggregateMean:
			out[j] = Number(b.sums[j] / float64(b.counts[j]))
		default:
			out[j] = Number(b.sums[j])
		}
		if b.counts[j] > 0 {
			seen = true
		}
		total += out[j].FloatOrZero()
	}
	return out, total, seen
}

func (b *bucket) row(cols []string, spec AggregateSpec, role roles, values []Value) []Value {
	r := make([]Value, len(cols))
	for i, c := range cols {
		switch {
		case c == spec.DateColumn:
			r[i] = Time(b.start)
		case c == domain.ColumnPeriod:
			r[i] = Text(PeriodLabel(b.start, spec.Granularity))
		default:
			if j := indexOf(spec.Values, c); j >= 0 {
				r[i] = values[j]
			} else if j := indexOf(spec.GroupKeys, c); j >= 0 {
				r[i] = b.groups[j]
			} else if j := indexOf(role.carry, c); j >= 0 {
				r[i] = b.first[j]
			}
		}
	}
	return r
}

type roles struct {
	carry []string
}

// columnRoles finds the descriptive columns carried through by first occurrence
func columnRoles(t *Table, spec AggregateSpec) roles {
	var r roles
	for _, c := range t.columns {
		if c == spec.DateColumn || c == domain.ColumnPeriod ||
			indexOf(spec.Values, c) >= 0 || indexOf(spec.GroupKeys, c) >= 0 {
			continue
		}
		r.carry = append(r.carry, c)
	}
	return r
}

// outputColumns keeps the input order and inserts Período after the date column
func outputColumns(t *Table, spec AggregateSpec) []string {
	cols := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		if c == domain.ColumnPeriod {
			continue
		}
		cols = append(cols, c)
		if c == spec.DateColumn {
			cols = append(cols, domain.ColumnPeriod)
		}
	}
	return cols
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

package dataprocessing

import (
	"sort"
)

// Table is an in-memory tabular dataset with named columns and labelled rows.
//
// Tables are never modified after construction: every transform returns a new
// Table and the caller's value is left untouched. Row slices may be shared
// between a table and the tables derived from it, so nothing in this package
// writes into an existing row.
type Table struct {
	columns []string
	lookup  map[string]int
	index   []int
	rows    [][]Value
}

// NewTable builds a table from column names and rows. Rows shorter than the
// header are padded with nulls, longer rows are truncated. Row labels are the
// dense sequence 0..n-1.
func NewTable(columns []string, rows [][]Value) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	out := make([][]Value, len(rows))
	for i, row := range rows {
		r := make([]Value, len(cols))
		copy(r, row)
		out[i] = r
	}
	return newTable(cols, denseIndex(len(out)), out)
}

// EmptyTable returns a table with the given columns and no rows
func EmptyTable(columns ...string) *Table {
	return NewTable(columns, nil)
}

func newTable(columns []string, index []int, rows [][]Value) *Table {
	lookup := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := lookup[c]; !dup {
			lookup[c] = i
		}
	}
	return &Table{
		columns: columns,
		lookup:  lookup,
		index:   index,
		rows:    rows,
	}
}

func denseIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Index returns a copy of the row labels
func (t *Table) Index() []int {
	if t == nil {
		return nil
	}
	out := make([]int, len(t.index))
	copy(out, t.index)
	return out
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.lookup[name]
	return ok
}

// Value returns the cell at row position i in the named column.
// Unknown columns and out-of-range rows yield null.
func (t *Table) Value(i int, column string) Value {
	if t == nil || i < 0 || i >= len(t.rows) {
		return Null()
	}
	c, ok := t.lookup[column]
	if !ok {
		return Null()
	}
	return t.rows[i][c]
}

// Column returns a copy of every cell in the named column
func (t *Table) Column(name string) []Value {
	if !t.HasColumn(name) {
		return nil
	}
	c := t.lookup[name]
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// Floats returns the numeric content of a column, nulls and text as zero
func (t *Table) Floats(name string) []float64 {
	vals := t.Column(name)
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.FloatOrZero()
	}
	return out
}

// Row returns a copy of the row at position i
func (t *Table) Row(i int) []Value {
	if t == nil || i < 0 || i >= len(t.rows) {
		return nil
	}
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Clone returns a table with the same content that shares nothing mutable
func (t *Table) Clone() *Table {
	if t == nil {
		return EmptyTable()
	}
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(row))
		copy(r, row)
		rows[i] = r
	}
	return newTable(t.Columns(), t.Index(), rows)
}

// Filter keeps the rows for which keep returns true. Row labels are preserved.
func (t *Table) Filter(keep func(i int) bool) *Table {
	if t == nil {
		return EmptyTable()
	}
	var positions []int
	for i := range t.rows {
		if keep(i) {
			positions = append(positions, i)
		}
	}
	return t.SelectRows(positions)
}

// SelectRows returns the rows at the given positions, in that order, keeping labels
func (t *Table) SelectRows(positions []int) *Table {
	if t == nil {
		return EmptyTable()
	}
	rows := make([][]Value, 0, len(positions))
	index := make([]int, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(t.rows) {
			continue
		}
		rows = append(rows, t.rows[p])
		index = append(index, t.index[p])
	}
	return newTable(t.Columns(), index, rows)
}

// DropColumns returns a table without the columns matched by drop
func (t *Table) DropColumns(drop func(name string) bool) *Table {
	if t == nil {
		return EmptyTable()
	}
	var keep []int
	var cols []string
	for i, c := range t.columns {
		if !drop(c) {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	if len(keep) == len(t.columns) {
		return newTable(cols, t.Index(), t.rows)
	}
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(keep))
		for j, k := range keep {
			r[j] = row[k]
		}
		rows[i] = r
	}
	return newTable(cols, t.Index(), rows)
}

// Project returns a table restricted to the named columns, in the given order.
// Unknown names are ignored.
func (t *Table) Project(names ...string) *Table {
	if t == nil {
		return EmptyTable()
	}
	var cols []string
	var src []int
	for _, n := range names {
		if c, ok := t.lookup[n]; ok {
			cols = append(cols, n)
			src = append(src, c)
		}
	}
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(src))
		for j, c := range src {
			r[j] = row[c]
		}
		rows[i] = r
	}
	return newTable(cols, t.Index(), rows)
}

// WithColumn returns a table where the named column holds values. An existing
// column is replaced in place, a new one is appended. values must have Len() entries.
func (t *Table) WithColumn(name string, values []Value) *Table {
	if t == nil {
		t = EmptyTable()
	}
	cols := t.Columns()
	c, exists := t.lookup[name]
	if !exists {
		cols = append(cols, name)
		c = len(cols) - 1
	}
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(cols))
		copy(r, row)
		if i < len(values) {
			r[c] = values[i]
		} else {
			r[c] = Null()
		}
		rows[i] = r
	}
	return newTable(cols, t.Index(), rows)
}

// MapColumn returns a table with fn applied to every cell of the named column
func (t *Table) MapColumn(name string, fn func(Value) Value) *Table {
	vals := t.Column(name)
	if vals == nil {
		return t.Clone()
	}
	for i, v := range vals {
		vals[i] = fn(v)
	}
	return t.WithColumn(name, vals)
}

// ResetIndex relabels the rows 0..n-1
func (t *Table) ResetIndex() *Table {
	if t == nil {
		return EmptyTable()
	}
	return newTable(t.Columns(), denseIndex(len(t.rows)), t.rows)
}

// SortBy returns the rows ordered ascending by the named columns (stable).
// Nulls sort last. Row labels travel with their rows.
func (t *Table) SortBy(columns ...string) *Table {
	if t == nil {
		return EmptyTable()
	}
	var keys []int
	for _, name := range columns {
		if c, ok := t.lookup[name]; ok {
			keys = append(keys, c)
		}
	}
	positions := denseIndex(len(t.rows))
	if len(keys) > 0 {
		sort.SliceStable(positions, func(a, b int) bool {
			ra, rb := t.rows[positions[a]], t.rows[positions[b]]
			for _, k := range keys {
				if cmp := compareValues(ra[k], rb[k]); cmp != 0 {
					return cmp < 0
				}
			}
			return false
		})
	}
	return t.SelectRows(positions)
}

// Equal reports whether two tables have the same columns, labels and cells
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	a, b := t.Columns(), o.Columns()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	ia, ib := t.Index(), o.Index()
	for i := range ia {
		if ia[i] != ib[i] {
			return false
		}
	}
	for i := 0; i < t.Len(); i++ {
		for j := range a {
			if !t.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// Concat stacks tables vertically. The result holds the union of the columns
// in first-seen order; cells missing from a source table are null. Labels are
// reset to a dense sequence.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += t.Len()
		for _, c := range t.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	rows := make([][]Value, 0, total)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.rows {
			r := make([]Value, len(cols))
			for j, c := range cols {
				if k, ok := t.lookup[c]; ok {
					r[j] = row[k]
				}
			}
			rows = append(rows, r)
		}
	}
	return newTable(cols, denseIndex(len(rows)), rows)
}

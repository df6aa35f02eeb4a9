package dataprocessing

// AddCumulative appends (or replaces) target with the running total, over
// rows sorted ascending by date, of the row-wise sum of the source columns.
// Missing source values count as zero. The result is date-ordered.
//
// Call it after Aggregate, never before: summing an already cumulative column
// per bucket counts earlier rows more than once.
func AddCumulative(t *Table, dateColumn string, sources []string, target string) (*Table, error) {
	if err := requireColumns(t, "", dateColumn); err != nil {
		return nil, err
	}
	if err := requireColumns(t, "", sources...); err != nil {
		return nil, err
	}

	sorted := t.SortBy(dateColumn)
	totals := RowSums(sorted, sources)
	running := RunningTotal(totals)

	vals := make([]Value, len(running))
	for i, f := range running {
		vals[i] = Number(f)
	}
	return sorted.WithColumn(target, vals), nil
}

// RowSums returns, per row, the sum of the given columns with nulls as zero
func RowSums(t *Table, columns []string) []float64 {
	out := make([]float64, t.Len())
	for _, c := range columns {
		for i, f := range t.Floats(c) {
			out[i] += f
		}
	}
	return out
}

// RunningTotal returns the prefix sums of values
func RunningTotal(values []float64) []float64 {
	out := make([]float64, len(values))
	acc := 0.0
	for i, v := range values {
		acc += v
		out[i] = acc
	}
	return out
}

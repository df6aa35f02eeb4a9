package dataprocessing

import "strings"

// placeholderMarker is the name prefix the workbook reader gives to columns
// with a blank header cell.
const placeholderMarker = "Unnamed"

// IsPlaceholderColumn reports whether a column name is a spreadsheet import artifact
func IsPlaceholderColumn(name string) bool {
	return strings.TrimSpace(name) == "" || strings.Contains(name, placeholderMarker)
}

// Sanitize turns a raw imported sheet into a canonical table:
//
//   - columns whose name is a placeholder artifact are dropped
//   - the date column is coerced to date/time, unparseable cells become null
//   - rows without a date are dropped
//   - rows are relabelled 0..n-1
//
// The input table is not modified. An empty result is not an error.
func Sanitize(raw *Table, dateColumn string) (*Table, error) {
	if err := requireColumns(raw, "", dateColumn); err != nil {
		return nil, err
	}

	t := raw.DropColumns(IsPlaceholderColumn)
	t = t.MapColumn(dateColumn, CoerceTime)
	t = t.Filter(func(i int) bool {
		return !t.Value(i, dateColumn).IsNull()
	})
	return t.ResetIndex(), nil
}

// SanitizeSheet sanitizes a sheet and checks its required columns, naming the
// sheet in any MissingColumnError.
func SanitizeSheet(raw *Table, sheet, dateColumn string, required ...string) (*Table, error) {
	if err := requireColumns(raw, sheet, dateColumn); err != nil {
		return nil, err
	}
	if err := requireColumns(raw, sheet, required...); err != nil {
		return nil, err
	}
	return Sanitize(raw, dateColumn)
}

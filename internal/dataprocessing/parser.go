package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fielddash/pkg/contracts/domain"
)

// numericShare is the minimum share of numeric cells for a column to be
// detected as a measurement column.
const numericShare = 0.8

// Workbook holds the raw tables of one uploaded file, keyed by sheet name
type Workbook struct {
	Name   string
	Sheets map[string]*Table
	Order  []string
}

// ReadWorkbook reads every sheet of an xlsx stream into raw tables. The first
// row of a sheet is its header; blank header cells are named "Unnamed: <n>"
// with n the 0-based column position.
func ReadWorkbook(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}
	defer f.Close()

	wb := &Workbook{Name: name, Sheets: make(map[string]*Table)}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrUnreadable, name, sheet, err)
		}
		t := rawTable(rows)
		wb.Sheets[sheet] = t
		wb.Order = append(wb.Order, sheet)
		slog.Debug("sheet read",
			slog.String("file", name),
			slog.String("sheet", sheet),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.columns)))
	}
	return wb, nil
}

// Sheet returns the raw table of a sheet
func (w *Workbook) Sheet(name domain.SheetName) (*Table, bool) {
	t, ok := w.Sheets[string(name)]
	return t, ok
}

// RequireSheet returns the raw table of a sheet or a MissingSheetError
func (w *Workbook) RequireSheet(name domain.SheetName) (*Table, error) {
	t, ok := w.Sheet(name)
	if !ok {
		return nil, &MissingSheetError{File: w.Name, Sheet: string(name)}
	}
	return t, nil
}

// LoadSheet validates a sheet against its schema and sanitizes it. A missing
// optional sheet yields (nil, nil).
func (w *Workbook) LoadSheet(s domain.SheetSchema) (*Table, error) {
	raw, ok := w.Sheet(s.Name)
	if !ok {
		if s.Optional {
			return nil, nil
		}
		return nil, &MissingSheetError{File: w.Name, Sheet: string(s.Name)}
	}
	return SanitizeSheet(raw, string(s.Name), domain.ColumnDate, s.Required...)
}

func rawTable(rows [][]string) *Table {
	if len(rows) == 0 {
		return EmptyTable()
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	header := make([]string, width)
	for i := range header {
		h := ""
		if i < len(rows[0]) {
			h = strings.TrimSpace(rows[0][i])
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = h
	}
	header = dedupeHeader(header)

	body := make([][]Value, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := make([]Value, width)
		blank := true
		for i, cell := range row {
			r[i] = parseCell(cell)
			if !r[i].IsNull() {
				blank = false
			}
		}
		if blank {
			continue
		}
		body = append(body, r)
	}
	return NewTable(header, body)
}

// dedupeHeader renames repeated names to "<name>.1", "<name>.2", ... in
// column order, skipping any suffix already taken by another column.
func dedupeHeader(header []string) []string {
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s.%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

// parseCell types a raw cell as a number when it parses as one (decimal comma
// accepted), otherwise as text.
func parseCell(cell string) Value {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Null()
	}
	if f, ok := parseNumber(s); ok {
		return Number(f)
	}
	return Text(s)
}

// decimalPattern is plain decimal notation with an optional exponent. It
// leaves out the inf, nan, hex and underscore forms ParseFloat also accepts.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber accepts plain decimals, or a decimal comma in place of the
// point. Values that overflow to ±Inf are rejected.
func parseNumber(s string) (float64, bool) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// DetectNumericColumns returns the columns, other than skip, where at least
// 80% of the non-null cells are numbers.
func DetectNumericColumns(t *Table, skip ...string) []string {
	var out []string
	for _, c := range t.Columns() {
		if indexOf(skip, c) >= 0 {
			continue
		}
		numeric, total := 0, 0
		for _, v := range t.Column(c) {
			if v.IsNull() {
				continue
			}
			total++
			if v.Kind() == KindNumber {
				numeric++
			}
		}
		if total > 0 && float64(numeric)/float64(total) >= numericShare {
			out = append(out, c)
		}
	}
	return out
}

// CoerceNumeric converts text cells holding numbers into numeric cells and
// everything else in the column into null.
func CoerceNumeric(t *Table, columns ...string) *Table {
	for _, c := range columns {
		t = t.MapColumn(c, func(v Value) Value {
			switch v.Kind() {
			case KindNumber:
				return v
			case KindText:
				if f, ok := parseNumber(strings.TrimSpace(v.String())); ok {
					return Number(f)
				}
			}
			return Null()
		})
	}
	return t
}

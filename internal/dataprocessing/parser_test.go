package dataprocessing

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fielddash/pkg/contracts/domain"
)

// buildWorkbook writes an in-memory xlsx with one sheet per entry of sheets.
// The first row of every sheet is its header.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadWorkbook(t *testing.T) {
	r := buildWorkbook(t, map[string][][]interface{}{
		"Volume Bombeado": {
			{"Data", nil, "Volume Bombeado (L)"},
			{day(2024, 1, 1), nil, 100},
			{"02/01/2024", "nota", "150,5"},
			{nil, nil, nil},
			{nil, nil, 30},
		},
	})

	wb, err := ReadWorkbook(r, "campanha.xlsx")
	require.NoError(t, err)

	raw, ok := wb.Sheet(domain.SheetVolumePumped)
	require.True(t, ok)
	assert.Equal(t, []string{"Data", "Unnamed: 1", "Volume Bombeado (L)"}, raw.Columns())
	assert.Equal(t, 3, raw.Len(), "fully blank rows are skipped")
	assert.Equal(t, 150.5, raw.Value(1, "Volume Bombeado (L)").FloatOrZero())

	schema, _ := domain.SchemaFor(domain.SheetVolumePumped)
	clean, err := wb.LoadSheet(schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Volume Bombeado (L)"}, clean.Columns())
	require.Equal(t, 2, clean.Len())
	d, ok := clean.Value(0, "Data").Time()
	require.True(t, ok)
	assert.True(t, d.Equal(day(2024, 1, 1)), "got %s", d)
}

func TestReadWorkbookUnreadable(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("not a zip")), "broken.xlsx")
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestWorkbookMissingSheet(t *testing.T) {
	r := buildWorkbook(t, map[string][][]interface{}{
		"Volume Bombeado": {{"Data", "Volume Bombeado (L)"}},
	})
	wb, err := ReadWorkbook(r, "parcial.xlsx")
	require.NoError(t, err)

	schema, _ := domain.SchemaFor(domain.SheetProductVolume)
	_, err = wb.LoadSheet(schema)

	var sheetErr *MissingSheetError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, "parcial.xlsx", sheetErr.File)
	assert.Equal(t, "Volume Produto", sheetErr.Sheet)

	optional, _ := domain.SchemaFor(domain.SheetHydrometers)
	tbl, err := wb.LoadSheet(optional)
	assert.NoError(t, err)
	assert.Nil(t, tbl)
}

func TestWorkbookMissingColumn(t *testing.T) {
	r := buildWorkbook(t, map[string][][]interface{}{
		"FL": {{"Data", "NA (m)", "NO (m)", "Esp. (m)"}},
	})
	wb, err := ReadWorkbook(r, "fl.xlsx")
	require.NoError(t, err)

	schema, _ := domain.SchemaFor(domain.SheetFreePhase)
	_, err = wb.LoadSheet(schema)

	var colErr *MissingColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "FL", colErr.Sheet)
	assert.Equal(t, "Poço", colErr.Column)
}

func TestDetectNumericColumns(t *testing.T) {
	rows := make([][]Value, 0, 10)
	for i := 0; i < 10; i++ {
		mixed := Number(float64(i))
		if i < 3 {
			mixed = Text("n/a")
		}
		rows = append(rows, []Value{Time(day(2024, 1, i+1)), Number(float64(i)), mixed, Text("x")})
	}
	tbl := NewTable([]string{"Data", "H1", "H2", "Obs"}, rows)

	assert.Equal(t, []string{"H1"}, DetectNumericColumns(tbl, "Data"))
}

func TestCoerceNumeric(t *testing.T) {
	tbl := NewTable([]string{"v"}, [][]Value{{Text("1,5")}, {Text("abc")}, {Number(2)}})

	got := CoerceNumeric(tbl, "v")

	assert.Equal(t, 1.5, got.Value(0, "v").FloatOrZero())
	assert.True(t, got.Value(1, "v").IsNull())
	assert.Equal(t, 2.0, got.Value(2, "v").FloatOrZero())
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		kind ValueKind
		num  float64
	}{
		{"12.5", KindNumber, 12.5},
		{"-3", KindNumber, -3},
		{"1,75", KindNumber, 1.75},
		{".5", KindNumber, 0.5},
		{"2.4E-3", KindNumber, 0.0024},
		{"inf", KindText, 0},
		{"Infinity", KindText, 0},
		{"-INF", KindText, 0},
		{"NaN", KindText, 0},
		{"1_000", KindText, 0},
		{"0x1F", KindText, 0},
		{"1,000.5", KindText, 0},
		{"1e999", KindText, 0},
		{"  ", KindNull, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := parseCell(tt.raw)
			assert.Equal(t, tt.kind, v.Kind())
			if tt.kind == KindNumber {
				assert.InDelta(t, tt.num, v.FloatOrZero(), 1e-12)
			}
		})
	}
}

func TestNumberRejectsInfinity(t *testing.T) {
	assert.True(t, Number(math.Inf(1)).IsNull())
	assert.True(t, Number(math.Inf(-1)).IsNull())
	assert.True(t, Number(math.NaN()).IsNull())
}

func TestRawTableDuplicateHeaders(t *testing.T) {
	tbl := rawTable([][]string{
		{"Data", "X", "X", "X.1", ""},
		{"2024-01-01", "1", "2", "3", "4"},
	})

	assert.Equal(t, []string{"Data", "X", "X.2", "X.1", "Unnamed: 4"}, tbl.Columns())
	assert.Equal(t, 1.0, tbl.Value(0, "X").FloatOrZero())
	assert.Equal(t, 2.0, tbl.Value(0, "X.2").FloatOrZero())
	assert.Equal(t, 3.0, tbl.Value(0, "X.1").FloatOrZero())
}

package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet names of a monitoring workbook in the order the field team saves them
var FieldOrder = []string{"Volume Bombeado", "Volume Produto", "FL", "Hidrômetros"}

// Date returns midnight UTC of the given day
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WorkbookBytes writes an in-memory xlsx file. The first row of each sheet is
// its header; sheets are created in the given order.
func WorkbookBytes(t testing.TB, order []string, sheets map[string][][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// FieldSheets is a complete monitoring workbook: ten days of pumping from
// Monday 2024-01-01 with a blank placeholder column, product removal, two
// wells and one hydrometer. Callers may mutate the returned map.
func FieldSheets() map[string][][]interface{} {
	pumped := [][]interface{}{{"Data", nil, "Volume Bombeado (L)"}}
	for d := 1; d <= 10; d++ {
		pumped = append(pumped, []interface{}{Date(2024, 1, d), nil, 100})
	}
	return map[string][][]interface{}{
		"Volume Bombeado": pumped,
		"Volume Produto": {
			{"Data", "Volume Removido SAO (L)", "Volume Removido Bailer (L)"},
			{Date(2024, 1, 1), 10, 5},
			{Date(2024, 1, 2), 20, nil},
		},
		"FL": {
			{"Data", "Poço", "NA (m)", "NO (m)", "Esp. (m)"},
			{Date(2024, 1, 1), "PM-01", 2.5, 2.0, 0.5},
			{Date(2024, 1, 2), "PM-02", 3.0, 3.0, 0},
			{Date(2024, 1, 3), "PM-01", 2.6, 2.1, 0.5},
		},
		"Hidrômetros": {
			{"Data", "HD-01 (m³)"},
			{Date(2024, 1, 1), 5},
			{Date(2024, 1, 2), 7},
		},
	}
}

// FieldWorkbook is FieldSheets written as xlsx
func FieldWorkbook(t testing.TB) []byte {
	return WorkbookBytes(t, FieldOrder, FieldSheets())
}

package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

// WorkbookBytes writes a table to a single-sheet xlsx named after fileName
func WorkbookBytes(t *dataprocessing.Table, fileName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetNameFor(fileName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("create date style: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for j, c := range cols {
		header[j] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = t.Value(i, c).Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for j, c := range cols {
		if !isTimeColumn(t, c) {
			continue
		}
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColStyle(sheet, name, dateStyle); err != nil {
			return nil, fmt.Errorf("style column %s: %w", c, err)
		}
		if err := f.SetColWidth(sheet, name, name, 12); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ChartsWorkbook writes the traces of every chart to its own sheet
// (Grafico_1, Grafico_2, ...), one X/Y column pair per trace.
func ChartsWorkbook(specs []*domain.ChartSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, spec := range specs {
		sheet := fmt.Sprintf("Grafico_%d", i+1)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		for j, s := range spec.Series {
			xCol, err := excelize.ColumnNumberToName(2*j + 1)
			if err != nil {
				return nil, err
			}
			yCol, err := excelize.ColumnNumberToName(2*j + 2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, xCol+"1", fmt.Sprintf("X_%s", s.Name)); err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, yCol+"1", fmt.Sprintf("Y_%s", s.Name)); err != nil {
				return nil, err
			}
			for k, y := range s.Y {
				row := k + 2
				if k < len(s.X) {
					if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", xCol, row), s.X[k]); err != nil {
						return nil, err
					}
				}
				if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", yCol, row), y); err != nil {
					return nil, err
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func isTimeColumn(t *dataprocessing.Table, column string) bool {
	for _, v := range t.Column(column) {
		if !v.IsNull() {
			return v.Kind() == dataprocessing.KindTime
		}
	}
	return false
}

package exporter

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fielddash/internal/dataprocessing"
)

// Content types of the produced artifacts
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeZIP  = "application/zip"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Artifact is one downloadable export
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// formatFloat renders numbers for CSV: whole numbers without decimals,
// everything else with exactly 2 decimal places.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatCell renders a table cell for CSV output
func formatCell(v dataprocessing.Value) string {
	if f, ok := v.Float(); ok {
		return formatFloat(f)
	}
	return v.String()
}

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

// SheetNameFor derives a worksheet name from a file name: extension removed,
// characters Excel rejects replaced, at most 31 characters.
func SheetNameFor(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimSpace(invalidSheetChars.ReplaceAllString(name, "_"))
	if name == "" || name == "." {
		name = "Dados"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"fielddash/internal/dataprocessing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Comma     rune
}

// WriteCSV writes headers and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes a table as BOM-prefixed CSV
func WriteTable(w io.Writer, t *dataprocessing.Table) error {
	records := make([][]string, t.Len())
	cols := t.Columns()
	for i := range records {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = formatCell(t.Value(i, c))
		}
		records[i] = rec
	}
	return WriteCSV(w, WriteOptions{
		Headers:   cols,
		Records:   records,
		BOMPrefix: true,
	})
}

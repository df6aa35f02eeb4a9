package dataprocessing

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched with errors.Is by the presentation layer
var (
	ErrMissingSheet  = errors.New("missing sheet")
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrUnreadable    = errors.New("unreadable workbook")
)

// MissingSheetError reports a workbook without one of the expected sheets
type MissingSheetError struct {
	File  string
	Sheet string
}

func (e *MissingSheetError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("missing sheet %q", e.Sheet)
	}
	return fmt.Sprintf("file %q: missing sheet %q", e.File, e.Sheet)
}

func (e *MissingSheetError) Unwrap() error {
	return ErrMissingSheet
}

// MissingColumnError reports a sheet without one of its required columns
type MissingColumnError struct {
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("sheet %q: missing column %q", e.Sheet, e.Column)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// InvalidRangeError reports a date window that cannot be applied as given
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %s..%s: %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"), e.Reason)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// requireColumns returns a MissingColumnError for the first absent column
func requireColumns(t *Table, sheet string, columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &MissingColumnError{Sheet: sheet, Column: c}
		}
	}
	return nil
}

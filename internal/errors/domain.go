package errors

import (
	"errors"
	"net/http"

	"fielddash/internal/dataprocessing"
	"fielddash/internal/services"
	"fielddash/internal/session"
)

// Dashboard error types
const (
	TypeWorkbookSheet   = "/errors/workbook/missing-sheet"
	TypeWorkbookColumn  = "/errors/workbook/missing-column"
	TypeWorkbookInvalid = "/errors/workbook/unreadable"
	TypeInvalidRange    = "/errors/filters/invalid-range"
	TypeSessionNotFound = "/errors/session/not-found"
	TypeSheetNotFound   = "/errors/sheet/not-found"
	TypeNoData          = "/errors/data/not-loaded"
	TypeExportFormat    = "/errors/export/unsupported-format"
)

type domainMapping struct {
	target error
	status int
	typ    string
	title  string
}

// Checked in order; the first errors.Is match wins
var domainErrors = []domainMapping{
	{dataprocessing.ErrMissingSheet, http.StatusUnprocessableEntity, TypeWorkbookSheet, "Missing Sheet"},
	{dataprocessing.ErrMissingColumn, http.StatusUnprocessableEntity, TypeWorkbookColumn, "Missing Column"},
	{dataprocessing.ErrUnreadable, http.StatusUnprocessableEntity, TypeWorkbookInvalid, "Unreadable Workbook"},
	{dataprocessing.ErrInvalidRange, http.StatusBadRequest, TypeInvalidRange, "Invalid Date Range"},
	{services.ErrSessionNotFound, http.StatusNotFound, TypeSessionNotFound, "Session Not Found"},
	{session.ErrNotFound, http.StatusNotFound, TypeSessionNotFound, "Session Not Found"},
	{services.ErrUnknownSheet, http.StatusNotFound, TypeSheetNotFound, "Sheet Not Found"},
	{services.ErrNoData, http.StatusConflict, TypeNoData, "No Data Uploaded"},
	{services.ErrSheetNotLoaded, http.StatusConflict, TypeNoData, "Sheet Not Loaded"},
	{services.ErrUnsupportedFormat, http.StatusBadRequest, TypeExportFormat, "Unsupported Export Format"},
	{services.ErrNoFiles, http.StatusBadRequest, TypeValidation, "No Files Uploaded"},
	{services.ErrInvalidInput, http.StatusBadRequest, TypeValidation, "Invalid Input"},
}

// domainProblem maps pipeline and service errors to problem details.
// Typed errors add the offending sheet, column or range as extensions.
func domainProblem(err error, instance string) (*ProblemDetails, bool) {
	for _, m := range domainErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		problem := NewProblemDetails(m.status, m.typ, m.title, err.Error(), instance)

		var sheetErr *dataprocessing.MissingSheetError
		var columnErr *dataprocessing.MissingColumnError
		var rangeErr *dataprocessing.InvalidRangeError
		switch {
		case errors.As(err, &sheetErr):
			problem.WithExtension("sheet", sheetErr.Sheet)
			if sheetErr.File != "" {
				problem.WithExtension("file", sheetErr.File)
			}
		case errors.As(err, &columnErr):
			problem.WithExtension("sheet", columnErr.Sheet).
				WithExtension("column", columnErr.Column)
		case errors.As(err, &rangeErr):
			problem.WithExtension("reason", rangeErr.Reason)
		}
		return problem, true
	}
	return nil, false
}

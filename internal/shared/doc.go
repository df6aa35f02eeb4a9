// Package shared holds helpers used across fielddash packages that belong to
// no single layer.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - in-memory monitoring workbooks built with excelize
//
// Example usage:
//
//	func TestUpload(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.FieldWorkbook(t)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "workbook loaded")
//	}
//
// Nothing in this package may import a domain package.
package shared

// Package dataprocessing turns uploaded monitoring workbooks into the tables
// behind the dashboard charts.
//
// # Architecture
//
// The package is organized as a chain of pure transforms over Table:
//
// 1. Parser: reads every sheet of an xlsx stream into raw tables (ReadWorkbook)
// 2. Sanitizer: drops placeholder columns and undated rows (Sanitize)
// 3. Filter: restricts a table to an inclusive date window (FilterByDate)
// 4. Aggregator: regroups values onto a calendar grid (Aggregate)
// 5. Cumulative builder: appends a running total (AddCumulative)
//
// # Usage
//
//	wb, err := dataprocessing.ReadWorkbook(file, "campanha.xlsx")
//	if err != nil {
//	    return err
//	}
//	clean, err := wb.LoadSheet(schema)
//	filtered, err := dataprocessing.FilterByDate(clean, domain.ColumnDate, start, end)
//	weekly, err := dataprocessing.Aggregate(filtered, dataprocessing.SpecForSchema(schema, nil, domain.GranularityWeek))
//	withTotal, err := dataprocessing.AddCumulative(weekly, domain.ColumnDate, schema.Values, schema.Cumulative)
//
// # Data Flow
//
//	xlsx → Parser → raw Table → Sanitizer → Filter → Aggregator → Cumulative → charts
//
// Running totals are always computed after aggregation. Aggregating an
// already cumulative column sums earlier rows more than once.
//
// # Error Handling
//
// Malformed input is reported with typed errors that name the offending sheet
// or column (MissingSheetError, MissingColumnError); an inverted date range is
// an InvalidRangeError. Nothing here corrects invalid input. Empty tables are
// valid input and valid output for every transform.
package dataprocessing

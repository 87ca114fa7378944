// Package dataprocessing turns the raw real estate transactions file into
// the prepared table used by the dashboard, and answers the aggregation
// queries run against it.
//
// # Components
//
//  1. Parser: reads CSV (via gota) or XLSX (via excelize) into a RawTable of text cells
//  2. Processor: Prepare runs the fixed preparation steps and returns a Table
//  3. Analytics: filters, per-year and per-type aggregates, histograms, box statistics, trendlines
//
// # Usage
//
//	src, err := dataprocessing.LoadFile("data/real_estate_sample_30k.csv")
//	if err != nil {
//	    return err
//	}
//	table, err := dataprocessing.Prepare(src.Table, dataprocessing.DefaultOptions())
//	if err != nil {
//	    return err // *SchemaError, *DateParseError or *InsufficientDataError
//	}
//	subset := dataprocessing.FilterByYearRangeAndTypes(table, 2019, 2021, []string{"Residential"})
//	means, err := dataprocessing.GroupMeanByYear(subset, "Sale Amount")
//
// # Data Flow
//
//	File → RawTable → Prepare → Table → queries → DTOs in pkg/contracts/domain
//
// # Undefined values
//
// Numeric cells that cannot be parsed become undefined and are reported as
// NumericCoercionWarning entries in the table's Report. Every aggregate skips
// undefined values.
//
// # Concurrency
//
// A Table is never modified after Prepare returns. Queries build new tables,
// so a single prepared table can be shared by any number of goroutines.
package dataprocessing

// Package exporter writes the prepared dataset to disk or to a response.
//
// Two formats are supported:
//
// CSV: the prepared table in column order with an optional UTF-8 BOM so
// spreadsheet applications detect the encoding. Undefined numbers are empty
// cells.
//
// XLSX: a workbook with the prepared table on the "Prepared" sheet, the
// preparation report on "Report" and yearly means on "Yearly". Numeric
// columns are written as numbers.
//
// Example usage:
//
//	w := exporter.NewWriter(paths)
//	path, err := w.Export("prepared", table, exporter.FormatXLSX)
//
//	// or straight into an HTTP response
//	err = exporter.Write(rw, table, exporter.FormatCSV)
package exporter

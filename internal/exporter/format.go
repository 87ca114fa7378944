package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served for f
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// numericColumns hold float cells in spreadsheet exports
var numericColumns = map[string]bool{
	domain.ColumnAssessedValue: true,
	domain.ColumnSaleAmount:    true,
	domain.ColumnSalesRatio:    true,
	domain.ColumnYear:          true,
}

// cellValue converts a table cell for a spreadsheet. Numeric columns become
// float64, undefined numbers become nil (a blank cell).
func cellValue(column, text string) interface{} {
	if !numericColumns[column] {
		return text
	}
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}
	return f
}


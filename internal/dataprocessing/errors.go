package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColumn is returned when a query names a column the table cannot aggregate
var ErrUnknownColumn = errors.New("unknown numeric column")

// ErrInsufficientPoints is returned when a fit needs more distinct points than the table holds
var ErrInsufficientPoints = errors.New("insufficient data points")

// SchemaError reports required columns absent from the raw header,
// or a row whose width differs from the header.
type SchemaError struct {
	Missing []string
	Row     int
	Width   int
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("dataset schema: missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("dataset schema: row %d has %d cells", e.Row, e.Width)
}

// DateParseError reports a Date Recorded cell that is empty or unparseable.
// Row is the 1-based data row, not counting the header.
type DateParseError struct {
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("dataset row %d: cannot parse Date Recorded %q", e.Row, e.Value)
}

// InsufficientDataError reports a categorical column with no valid value to impute from
type InsufficientDataError struct {
	Column string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("column %q has no valid values to compute a mode", e.Column)
}

// NumericCoercionWarning records a numeric cell that could not be parsed.
// The cell becomes undefined; the run continues.
type NumericCoercionWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (w NumericCoercionWarning) String() string {
	return fmt.Sprintf("row %d: %s value %q is not numeric", w.Row, w.Column, w.Value)
}

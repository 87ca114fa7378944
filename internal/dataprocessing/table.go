package dataprocessing

import (
	"fmt"
	"strconv"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// modelledColumns are held as typed fields of domain.PreparedRecord
var modelledColumns = map[string]bool{
	domain.ColumnAssessedValue:   true,
	domain.ColumnSaleAmount:      true,
	domain.ColumnPropertyType:    true,
	domain.ColumnResidentialType: true,
	domain.ColumnYear:            true,
}

// Report summarizes one preparation run
type Report struct {
	Rows            int                      `json:"rows"`
	ImputedCounts   map[string]int           `json:"imputed_counts"`
	Modes           map[string]string        `json:"modes"`
	UndefinedCounts map[string]int           `json:"undefined_counts"`
	DroppedColumns  []string                 `json:"dropped_columns"`
	Warnings        []NumericCoercionWarning `json:"warnings"`
}

func (r Report) clone() Report {
	out := r
	out.ImputedCounts = make(map[string]int, len(r.ImputedCounts))
	for k, v := range r.ImputedCounts {
		out.ImputedCounts[k] = v
	}
	out.Modes = make(map[string]string, len(r.Modes))
	for k, v := range r.Modes {
		out.Modes[k] = v
	}
	out.UndefinedCounts = make(map[string]int, len(r.UndefinedCounts))
	for k, v := range r.UndefinedCounts {
		out.UndefinedCounts[k] = v
	}
	out.DroppedColumns = append([]string(nil), r.DroppedColumns...)
	out.Warnings = append([]NumericCoercionWarning(nil), r.Warnings...)
	return out
}

// Table is the prepared dataset. It has no mutators: every query returns
// a new Table, so one instance can be shared by concurrent readers.
type Table struct {
	columns      []string
	passthrough  []string
	records      []domain.PreparedRecord
	extras       [][]string
	ratioDerived bool
	report       Report

	// raw header positions of passthrough, only used while building
	passthroughIdx []int
}

// newTable creates an empty table whose columns follow the raw header,
// with the derived Year last
func newTable(raw *RawTable) *Table {
	t := &Table{}
	for i, h := range raw.Header {
		if h == domain.ColumnYear {
			continue
		}
		t.columns = append(t.columns, h)
		if !modelledColumns[h] {
			t.passthrough = append(t.passthrough, h)
			t.passthroughIdx = append(t.passthroughIdx, i)
		}
	}
	t.columns = append(t.columns, domain.ColumnYear)
	return t
}

// derive returns an empty table with the same shape as t
func (t *Table) derive(capacity int) *Table {
	return &Table{
		columns:      t.columns,
		passthrough:  t.passthrough,
		records:      make([]domain.PreparedRecord, 0, capacity),
		extras:       make([][]string, 0, capacity),
		ratioDerived: t.ratioDerived,
		report:       t.report,
	}
}

func (t *Table) append(rec domain.PreparedRecord, extra []string) {
	t.records = append(t.records, rec)
	t.extras = append(t.extras, extra)
}

// passthroughCells picks the unmodelled cells of a raw row in passthrough order
func (t *Table) passthroughCells(row []string) []string {
	cells := make([]string, len(t.passthroughIdx))
	for j, i := range t.passthroughIdx {
		cells[j] = row[i]
	}
	return cells
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.records)
}

// Columns returns the column names in output order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Record returns a copy of row i
func (t *Table) Record(i int) domain.PreparedRecord {
	return t.records[i]
}

// Records returns a copy of all rows
func (t *Table) Records() []domain.PreparedRecord {
	return append([]domain.PreparedRecord(nil), t.records...)
}

// Report returns the preparation report the table was built with
func (t *Table) Report() Report {
	return t.report.clone()
}

// RatioDerived reports whether SalesRatio has populated the Sales Ratio column
func (t *Table) RatioDerived() bool {
	return t.ratioDerived
}

// Value returns cell (i, column) formatted as text. Undefined numbers are "".
func (t *Table) Value(i int, column string) (string, error) {
	rec := t.records[i]
	switch column {
	case domain.ColumnYear:
		return strconv.Itoa(rec.Year), nil
	case domain.ColumnAssessedValue:
		return rec.AssessedValue.String(), nil
	case domain.ColumnSaleAmount:
		return rec.SaleAmount.String(), nil
	case domain.ColumnPropertyType:
		return rec.PropertyType, nil
	case domain.ColumnResidentialType:
		return rec.ResidentialType, nil
	}
	if column == domain.ColumnSalesRatio && t.ratioDerived {
		return rec.SalesRatio.String(), nil
	}
	for j, name := range t.passthrough {
		if name == column {
			return t.extras[i][j], nil
		}
	}
	return "", fmt.Errorf("column %q not in table", column)
}

// Row returns row i formatted as text, aligned with Columns
func (t *Table) Row(i int) []string {
	cells := make([]string, len(t.columns))
	for j, c := range t.columns {
		// every name in t.columns resolves
		cells[j], _ = t.Value(i, c)
	}
	return cells
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.Len() {
		n = t.Len()
	}
	out := t.derive(n)
	out.records = append(out.records, t.records[:n]...)
	out.extras = append(out.extras, t.extras[:n]...)
	return out
}

// Numeric returns the values of a numeric column. Sales Ratio is only
// available after SalesRatio has been applied.
func (t *Table) Numeric(column string) ([]domain.OptionalFloat, error) {
	get, err := numericAccessor(column, t.ratioDerived)
	if err != nil {
		return nil, err
	}
	values := make([]domain.OptionalFloat, len(t.records))
	for i := range t.records {
		values[i] = get(&t.records[i])
	}
	return values, nil
}

func numericAccessor(column string, ratioDerived bool) (func(*domain.PreparedRecord) domain.OptionalFloat, error) {
	switch column {
	case domain.ColumnSaleAmount:
		return func(r *domain.PreparedRecord) domain.OptionalFloat { return r.SaleAmount }, nil
	case domain.ColumnAssessedValue:
		return func(r *domain.PreparedRecord) domain.OptionalFloat { return r.AssessedValue }, nil
	case domain.ColumnSalesRatio:
		if !ratioDerived {
			return nil, fmt.Errorf("%w: %q has not been derived", ErrUnknownColumn, column)
		}
		return func(r *domain.PreparedRecord) domain.OptionalFloat { return r.SalesRatio }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

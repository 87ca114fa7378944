package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// RequiredColumns must be present in the raw header
var RequiredColumns = []string{
	domain.ColumnDateRecorded,
	domain.ColumnAssessedValue,
	domain.ColumnSaleAmount,
	domain.ColumnPropertyType,
	domain.ColumnResidentialType,
}

// dateLayouts are tried in order when parsing Date Recorded
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	time.RFC3339,
}

// Options configures the preparation pipeline
type Options struct {
	// Sentinels are placeholder values treated like missing categories
	Sentinels []string
	// DropColumns are removed from the prepared table when present
	DropColumns []string
	// CategoryGroups collapse property types containing a substring
	CategoryGroups []config.CategoryGroup
	// UnknownLabel replaces a missing property type at normalization
	UnknownLabel string
}

// DefaultOptions returns the preparation rules used by the dashboard
func DefaultOptions() Options {
	return NewOptions(config.Default().Dataset)
}

// NewOptions builds pipeline options from the dataset configuration
func NewOptions(cfg config.DatasetConfig) Options {
	unknown := cfg.UnknownLabel
	if unknown == "" {
		unknown = "Unknown"
	}
	return Options{
		Sentinels:      append([]string(nil), cfg.Sentinels...),
		DropColumns:    append([]string(nil), cfg.DropColumns...),
		CategoryGroups: cfg.Groups(),
		UnknownLabel:   unknown,
	}
}

// Prepare turns the raw table into the prepared table. Steps run in a
// fixed order: schema check, year extraction, category imputation,
// numeric coercion, column drop, property type normalization.
// Prepare never modifies raw and either returns a complete table or an error.
func Prepare(raw *RawTable, opts Options) (*Table, error) {
	if err := ValidateSchema(raw); err != nil {
		return nil, err
	}

	years, err := ExtractYears(raw)
	if err != nil {
		return nil, err
	}

	report := Report{
		Rows:            len(raw.Rows),
		ImputedCounts:   make(map[string]int),
		Modes:           make(map[string]string),
		UndefinedCounts: make(map[string]int),
	}

	current := raw
	for _, column := range []string{domain.ColumnPropertyType, domain.ColumnResidentialType} {
		imputed, mode, replaced, err := ImputeMode(current, column, opts.Sentinels)
		if err != nil {
			return nil, err
		}
		current = imputed
		report.Modes[column] = mode
		report.ImputedCounts[column] = replaced
	}

	saleAmounts, saleWarnings := CoerceNumeric(current, domain.ColumnSaleAmount)
	assessedValues, assessedWarnings := CoerceNumeric(current, domain.ColumnAssessedValue)
	report.Warnings = append(saleWarnings, assessedWarnings...)

	current = DropColumns(current, droppable(opts.DropColumns))
	for _, name := range opts.DropColumns {
		if raw.HasColumn(name) && !current.HasColumn(name) {
			report.DroppedColumns = append(report.DroppedColumns, name)
		}
	}

	table := newTable(current)
	ptIdx := current.ColumnIndex(domain.ColumnPropertyType)
	rtIdx := current.ColumnIndex(domain.ColumnResidentialType)

	for i, row := range current.Rows {
		rec := domain.PreparedRecord{
			Year:            years[i],
			AssessedValue:   assessedValues[i],
			SaleAmount:      saleAmounts[i],
			PropertyType:    NormalizePropertyType(row[ptIdx], opts),
			ResidentialType: row[rtIdx],
		}
		if !rec.SaleAmount.Valid {
			report.UndefinedCounts[domain.ColumnSaleAmount]++
		}
		if !rec.AssessedValue.Valid {
			report.UndefinedCounts[domain.ColumnAssessedValue]++
		}
		table.append(rec, table.passthroughCells(row))
	}

	table.report = report
	return table, nil
}

// ValidateSchema checks the required columns and the width of every row
func ValidateSchema(raw *RawTable) error {
	var missing []string
	for _, name := range RequiredColumns {
		if !raw.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}

	for i, row := range raw.Rows {
		if len(row) != len(raw.Header) {
			return &SchemaError{Row: i + 1, Width: len(row)}
		}
	}
	return nil
}

// ExtractYears parses Date Recorded for every row. The first empty or
// unparseable cell aborts with a *DateParseError.
func ExtractYears(raw *RawTable) ([]int, error) {
	idx := raw.ColumnIndex(domain.ColumnDateRecorded)
	years := make([]int, len(raw.Rows))
	for i, row := range raw.Rows {
		t, ok := parseDate(row[idx])
		if !ok {
			return nil, &DateParseError{Row: i + 1, Value: row[idx]}
		}
		years[i] = t.Year()
	}
	return years, nil
}

func parseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if IsMissing(v) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ImputeMode replaces missing and sentinel cells of column with the most
// frequent valid value. Ties go to the value seen first. It returns a new
// table, the mode and the number of replaced cells.
func ImputeMode(raw *RawTable, column string, sentinels []string) (*RawTable, string, int, error) {
	idx := raw.ColumnIndex(column)
	if idx < 0 {
		return nil, "", 0, &SchemaError{Missing: []string{column}}
	}

	counts := make(map[string]int)
	var order []string
	for _, row := range raw.Rows {
		v := row[idx]
		if IsMissing(v) || isSentinel(v, sentinels) {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return nil, "", 0, &InsufficientDataError{Column: column}
	}

	mode := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[mode] {
			mode = v
		}
	}

	out := raw.clone()
	replaced := 0
	for i, row := range out.Rows {
		if IsMissing(row[idx]) || isSentinel(row[idx], sentinels) {
			cells := make([]string, len(row))
			copy(cells, row)
			cells[idx] = mode
			out.Rows[i] = cells
			replaced++
		}
	}
	return out, mode, replaced, nil
}

// CoerceNumeric parses column as numbers after removing thousands
// separators. Missing cells become undefined silently; unparseable or
// non-finite cells become undefined with a warning.
func CoerceNumeric(raw *RawTable, column string) ([]domain.OptionalFloat, []NumericCoercionWarning) {
	idx := raw.ColumnIndex(column)
	values := make([]domain.OptionalFloat, len(raw.Rows))
	if idx < 0 {
		return values, nil
	}

	var warnings []NumericCoercionWarning
	for i, row := range raw.Rows {
		cell := row[idx]
		if IsMissing(cell) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(cell, ",", "")), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			warnings = append(warnings, NumericCoercionWarning{Row: i + 1, Column: column, Value: cell})
			continue
		}
		values[i] = domain.Some(v)
	}
	return values, warnings
}

// DropColumns removes the named columns. Absent names are ignored, so
// applying it twice gives the same table as applying it once.
func DropColumns(raw *RawTable, names []string) *RawTable {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var keep []int
	for i, h := range raw.Header {
		if !drop[h] {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(raw.Header) {
		return raw.clone()
	}

	out := &RawTable{Header: make([]string, len(keep)), Rows: make([][]string, len(raw.Rows))}
	for j, i := range keep {
		out.Header[j] = raw.Header[i]
	}
	for r, row := range raw.Rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out
}

// NormalizePropertyType applies the category grouping rules to one value
func NormalizePropertyType(value string, opts Options) string {
	if IsMissing(value) {
		return opts.UnknownLabel
	}
	for _, g := range opts.CategoryGroups {
		if g.Substring != "" && strings.Contains(value, g.Substring) {
			return g.Target
		}
	}
	return value
}

// droppable filters out the modelled columns so a misconfigured drop list
// cannot remove them
func droppable(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		switch n {
		case domain.ColumnAssessedValue, domain.ColumnSaleAmount,
			domain.ColumnPropertyType, domain.ColumnResidentialType:
			continue
		}
		out = append(out, n)
	}
	return out
}

package exporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetPrepared = "Prepared"
	SheetReport   = "Report"
	SheetYearly   = "Yearly"
)

// WriteXLSX writes t, its preparation report and its yearly means as a workbook
func WriteXLSX(out io.Writer, t *dataprocessing.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPrepared); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetReport, SheetYearly} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writePreparedSheet(f, t, header); err != nil {
		return err
	}
	if err := writeReportSheet(f, t.Report(), header); err != nil {
		return err
	}
	if err := writeYearlySheet(f, t, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetWriter appends rows to one sheet of a streamed workbook
type sheetWriter struct {
	sw     *excelize.StreamWriter
	row    int
	header int
}

func newSheetWriter(f *excelize.File, sheet string, header int) (*sheetWriter, error) {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}
	return &sheetWriter{sw: sw, header: header}, nil
}

func (s *sheetWriter) writeHeader(names ...string) error {
	cells := make([]interface{}, len(names))
	for i, n := range names {
		cells[i] = excelize.Cell{StyleID: s.header, Value: n}
	}
	return s.write(cells)
}

func (s *sheetWriter) write(values []interface{}) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", s.row, err)
	}
	return nil
}

func (s *sheetWriter) flush() error {
	return s.sw.Flush()
}

func writePreparedSheet(f *excelize.File, t *dataprocessing.Table, header int) error {
	s, err := newSheetWriter(f, SheetPrepared, header)
	if err != nil {
		return err
	}

	columns := t.Columns()
	if err := s.writeHeader(columns...); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		values := make([]interface{}, len(row))
		for j, text := range row {
			values[j] = cellValue(columns[j], text)
		}
		if err := s.write(values); err != nil {
			return err
		}
	}
	return s.flush()
}

func writeReportSheet(f *excelize.File, report dataprocessing.Report, header int) error {
	s, err := newSheetWriter(f, SheetReport, header)
	if err != nil {
		return err
	}

	if err := s.writeHeader("Section", "Column", "Value"); err != nil {
		return err
	}

	rows := [][]interface{}{{"rows", "", report.Rows}}
	for _, c := range sortedKeys(report.ImputedCounts) {
		rows = append(rows, []interface{}{"imputed", c, report.ImputedCounts[c]})
	}
	for _, c := range sortedKeys(report.Modes) {
		rows = append(rows, []interface{}{"mode", c, report.Modes[c]})
	}
	for _, c := range sortedKeys(report.UndefinedCounts) {
		rows = append(rows, []interface{}{"undefined", c, report.UndefinedCounts[c]})
	}
	for _, c := range report.DroppedColumns {
		rows = append(rows, []interface{}{"dropped", c, ""})
	}
	for _, w := range report.Warnings {
		rows = append(rows, []interface{}{"warning", w.Column, w.String()})
	}

	for _, r := range rows {
		if err := s.write(r); err != nil {
			return err
		}
	}
	return s.flush()
}

func writeYearlySheet(f *excelize.File, t *dataprocessing.Table, header int) error {
	sales, err := dataprocessing.GroupMeanByYear(t, domain.ColumnSaleAmount)
	if err != nil {
		return err
	}
	assessed, err := dataprocessing.GroupMeanByYear(t, domain.ColumnAssessedValue)
	if err != nil {
		return err
	}

	type yearRow struct {
		sale, assessed *domain.YearMean
	}
	byYear := make(map[int]*yearRow)
	for i := range sales {
		byYear[sales[i].Year] = &yearRow{sale: &sales[i]}
	}
	for i := range assessed {
		r, ok := byYear[assessed[i].Year]
		if !ok {
			r = &yearRow{}
			byYear[assessed[i].Year] = r
		}
		r.assessed = &assessed[i]
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	s, err := newSheetWriter(f, SheetYearly, header)
	if err != nil {
		return err
	}
	if err := s.writeHeader(domain.ColumnYear, "Mean "+domain.ColumnSaleAmount, "Mean "+domain.ColumnAssessedValue); err != nil {
		return err
	}
	for _, y := range years {
		r := byYear[y]
		values := []interface{}{y, nil, nil}
		if r.sale != nil {
			values[1] = r.sale.Mean
		}
		if r.assessed != nil {
			values[2] = r.assessed.Mean
		}
		if err := s.write(values); err != nil {
			return err
		}
	}
	return s.flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

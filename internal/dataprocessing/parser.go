package dataprocessing

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Source is a raw dataset together with its identity
type Source struct {
	Table       *RawTable
	Path        string
	Format      string
	Fingerprint string
}

// LoadFile reads a CSV or XLSX dataset from disk. The fingerprint is the
// BLAKE2b-256 digest of the file bytes.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	var table *RawTable
	switch format {
	case "csv":
		table, err = ReadCSV(bytes.NewReader(data))
	case "xlsx":
		table, err = ReadXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Dataset loaded",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Header)))

	return &Source{
		Table:       table,
		Path:        path,
		Format:      format,
		Fingerprint: Fingerprint(data),
	}, nil
}

// Fingerprint returns the hex BLAKE2b-256 digest of data
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ReadCSV loads a comma-separated table with a header row. Every cell is
// kept as text; typing happens in Prepare.
func ReadCSV(r io.Reader) (*RawTable, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to parse CSV: no header row")
	}

	return &RawTable{Header: records[0], Rows: records[1:]}, nil
}

// ReadXLSX loads the first worksheet of a workbook. Date Recorded cells
// stored as Excel serial numbers are rendered as ISO dates.
func ReadXLSX(r io.Reader) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	header := rows[0]
	table := &RawTable{Header: header, Rows: make([][]string, 0, len(rows)-1)}
	dateIdx := table.ColumnIndex(domain.ColumnDateRecorded)

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, &SchemaError{Row: i + 1, Width: len(row)}
		}
		// GetRows drops trailing empty cells
		cells := make([]string, len(header))
		copy(cells, row)
		if dateIdx >= 0 {
			cells[dateIdx] = excelDate(cells[dateIdx])
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

// excelDate converts an Excel serial date to YYYY-MM-DD and leaves other text as is
func excelDate(value string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

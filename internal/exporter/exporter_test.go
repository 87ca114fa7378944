package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
)

func sampleTable(t *testing.T) *dataprocessing.Table {
	t.Helper()
	raw := &dataprocessing.RawTable{
		Header: []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type"},
		Rows: [][]string{
			{"2019-06-01", "100000", "150000", "Residential", "Single Family"},
			{"2019-07-01", "200000", "n/a", "Condo", "Condo"},
			{"2020-01-05", "300000", "400000", "Residential", "Single Family"},
		},
	}
	table, err := dataprocessing.Prepare(raw, dataprocessing.DefaultOptions())
	require.NoError(t, err)
	return table
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{".XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"json", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 150000.0, cellValue("Sale Amount", "150000"))
	assert.Nil(t, cellValue("Sale Amount", ""))
	assert.Equal(t, "Condo", cellValue("Property Type", "Condo"))
	assert.Equal(t, "007", cellValue("Town", "007"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(t), true))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	want := "Assessed Value,Sale Amount,Property Type,Residential Type,Year\n" +
		"100000,150000,Residential,Single Family,2019\n" +
		"200000,,Condo,Condo,2019\n" +
		"300000,400000,Residential,Single Family,2020\n"
	assert.Equal(t, want, string(out[len(utf8BOM):]))
}

func TestWriteCSV_NoBOMAndEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(t).Head(0), false))
	assert.Equal(t, "Assessed Value,Sale Amount,Property Type,Residential Type,Year\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(t), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPrepared, SheetReport, SheetYearly}, f.GetSheetList())

	rows, err := f.GetRows(SheetPrepared)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Assessed Value", "Sale Amount", "Property Type", "Residential Type", "Year"}, rows[0])
	assert.Equal(t, []string{"100000", "150000", "Residential", "Single Family", "2019"}, rows[1])
	assert.Equal(t, "", rows[2][1], "undefined sale amount is a blank cell")

	cellType, err := f.GetCellType(SheetPrepared, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	yearly, err := f.GetRows(SheetYearly)
	require.NoError(t, err)
	require.Len(t, yearly, 3)
	assert.Equal(t, []string{"2019", "150000", "150000"}, yearly[1])
	assert.Equal(t, []string{"2020", "400000", "300000"}, yearly[2])

	report, err := f.GetRows(SheetReport)
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Column", "Value"}, report[0])
	assert.Equal(t, []string{"rows", "", "3"}, report[1])

	var warnings int
	for _, r := range report {
		if len(r) > 0 && r[0] == "warning" {
			warnings++
			assert.Equal(t, "Sale Amount", r[1])
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleTable(t), Format("json")))
}

func TestWriterExport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(&config.Paths{ExportsDir: filepath.Join(dir, "exports")})

	path, err := w.Export("prepared", sampleTable(t), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "prepared.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, 4, strings.Count(string(data), "\n"))

	path, err = w.Export("prepared.xlsx", sampleTable(t), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "prepared.xlsx"), path)
	assert.FileExists(t, path)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, []string{"a", "b"}, false)
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1", "x,y"}))
	require.NoError(t, sw.Flush())
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())
}

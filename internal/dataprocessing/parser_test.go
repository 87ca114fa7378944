package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	raw := loadSample(t)

	assert.Len(t, raw.Header, 14)
	assert.Equal(t, "Serial Number", raw.Header[0])
	require.Len(t, raw.Rows, 10)
	assert.Equal(t, "1,200,000", raw.Rows[0][raw.ColumnIndex("Sale Amount")])
	assert.Equal(t, "", raw.Rows[5][raw.ColumnIndex("Residential Type")])
	for _, row := range raw.Rows {
		assert.Len(t, row, len(raw.Header))
	}
}

func TestReadCSV_MissingMarkers(t *testing.T) {
	raw, err := ReadCSV(strings.NewReader("Property Type,Sale Amount\nNA,1\n<nil>,2\nCondo,NaN\n"))
	require.NoError(t, err)

	for _, v := range raw.Column("Property Type")[:2] {
		assert.True(t, IsMissing(v), v)
	}
	assert.True(t, IsMissing(raw.Column("Sale Amount")[2]))
	assert.Equal(t, "Condo", raw.Column("Property Type")[2])
}

func TestReadCSV_Ragged(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type", "Town"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []interface{}{"2020-03-04", 150000, "300,000", "Residential", "Single Family"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	require.NoError(t, f.SetCellValue(sheet, "A3", 43831.0)) // 2020-01-01 as an Excel serial
	require.NoError(t, f.SetCellValue(sheet, "B3", 1))
	require.NoError(t, f.SetCellValue(sheet, "C3", 2))

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", src.Format)
	assert.Len(t, src.Fingerprint, 64)

	raw := src.Table
	assert.Equal(t, []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type", "Town"}, raw.Header)
	require.Len(t, raw.Rows, 2)
	assert.Equal(t, []string{"2020-03-04", "150000", "300,000", "Residential", "Single Family", ""}, raw.Rows[0])
	assert.Equal(t, "2020-01-01", raw.Rows[1][0])
}

func TestLoadFile_CSVFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(sampleCSV), 0644))
	require.NoError(t, os.WriteFile(b, []byte(sampleCSV+"11,2020,2021-01-01,X,Y,1,2,0.5,Condo,Condo,,,,\n"), 0644))

	srcA, err := LoadFile(a)
	require.NoError(t, err)
	srcA2, err := LoadFile(a)
	require.NoError(t, err)
	srcB, err := LoadFile(b)
	require.NoError(t, err)

	assert.Equal(t, "csv", srcA.Format)
	assert.Equal(t, srcA.Fingerprint, srcA2.Fingerprint)
	assert.NotEqual(t, srcA.Fingerprint, srcB.Fingerprint)
	assert.Equal(t, Fingerprint([]byte(sampleCSV)), srcA.Fingerprint)
	assert.Len(t, srcB.Table.Rows, 11)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)

	txt := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(txt, []byte("a,b\n"), 0644))
	_, err = LoadFile(txt)
	assert.ErrorContains(t, err, "unsupported")
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "NaN", "<nil>", " NaN "} {
		assert.True(t, IsMissing(v), "%q", v)
	}
	for _, v := range []string{"0", "-1", "Unknown", "nan"} {
		assert.False(t, IsMissing(v), "%q", v)
	}
}

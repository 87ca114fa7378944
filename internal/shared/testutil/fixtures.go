package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TransactionsCSV is a small export of the transactions file. It covers a
// missing sale amount, a zero sale amount, a sentinel residential type and
// a column the pipeline drops.
const TransactionsCSV = `Date Recorded,Assessed Value,Sale Amount,Property Type,Residential Type,Town
2019-03-01,50,100,Residential,Single Family,Ansonia
2020-01-15,100,100,Residential,Single Family,Ansonia
2020-02-15,150,,Residential,Condo,Ansonia
2020-03-15,200,300,Condo,Condo,Bethel
2021-04-01,400,0,Commercial,-1,Bethel
`

// ModelName is the name and version of the fixture model artifact
const ModelName = "gbr-sale-amount@v1"

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ModelPath returns the fixture model artifact shipped with the prediction package
func ModelPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to locate test fixtures")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "prediction", "testdata", "model.json")
}

// CopyModel copies the fixture model artifact into dir as name
func CopyModel(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(ModelPath(t))
	if err != nil {
		t.Fatalf("failed to read model fixture: %v", err)
	}
	return WriteFile(t, dir, name, string(data))
}

package dataprocessing

import "strings"

// missingMarkers are the cell values treated as absent, in addition to blank cells
var missingMarkers = []string{"NA", "NaN", "<nil>"}

// RawTable is the dataset as read from disk: a header row and string cells.
// Every row has exactly len(Header) cells.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains name
func (t *RawTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns the cells of one column, or nil when it is absent
func (t *RawTable) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// clone copies the header and the row slice; cells are shared until a row is replaced
func (t *RawTable) clone() *RawTable {
	header := make([]string, len(t.Header))
	copy(header, t.Header)
	rows := make([][]string, len(t.Rows))
	copy(rows, t.Rows)
	return &RawTable{Header: header, Rows: rows}
}

// IsMissing reports whether a cell carries no value
func IsMissing(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	for _, m := range missingMarkers {
		if v == m {
			return true
		}
	}
	return false
}

// isSentinel reports whether value is one of the placeholder markers
func isSentinel(value string, sentinels []string) bool {
	v := strings.TrimSpace(value)
	for _, s := range sentinels {
		if v == s {
			return true
		}
	}
	return false
}

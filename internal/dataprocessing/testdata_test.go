package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleHeader = "Serial Number,List Year,Date Recorded,Town,Address,Assessed Value,Sale Amount,Sales Ratio,Property Type,Residential Type,Non Use Code,Assessor Remarks,OPM remarks,Location"

// sampleCSV has ten rows over 2019-2021 with one sentinel property type,
// one missing residential type and one unparseable sale amount.
const sampleCSV = sampleHeader + `
1,2018,2019-05-01,Ansonia,1 MAIN ST,900000,"1,200,000",0.75,-1,Condo,,,,
2,2018,01/15/2019,Ansonia,2 MAIN ST,100000,200000,0.5,Residential,Single Family,,,,
3,2019,03/02/2020,Berlin,3 OAK AVE,150000,"300,000",0.5,Residential,Two Family,,,,
4,2019,2020-07-09,Berlin,4 OAK AVE,80000,0,0,Condo,Condo,,,,POINT (-72.1 41.5)
5,2019,2020-11-30,Bethel,5 ELM ST,120000,n/a,,Residential,Unknown,,,,
6,2020,2021-02-14,Bethel,6 ELM ST,300000,"600,000",0.5,Commercial,,,,,
7,2020,2021-06-01,Bolton,7 PINE RD,50000,100000,0.5,Three Family,Three Family,,,,
8,2020,2021-08-21,Bolton,8 PINE RD,60000,150000,0.4,Residential,Single Family,,,,
9,2020,2021-09-05,Canton,9 HILL DR,70000,140000,0.5,Unknown,Single Family,,,,
10,2020,2021-12-31,Canton,10 HILL DR,90000,180000,0.5,Condo,Condo,,,,
`

func loadSample(t *testing.T) *RawTable {
	t.Helper()
	raw, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return raw
}

func prepareSample(t *testing.T) *Table {
	t.Helper()
	table, err := Prepare(loadSample(t), DefaultOptions())
	require.NoError(t, err)
	return table
}

// rawTable builds a table from literal rows
func rawTable(header []string, rows ...[]string) *RawTable {
	return &RawTable{Header: header, Rows: rows}
}

package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

func TestPrepare_Sample(t *testing.T) {
	table := prepareSample(t)

	require.Equal(t, 10, table.Len())
	assert.Equal(t, []string{
		"Assessed Value", "Sale Amount", "Sales Ratio", "Property Type", "Residential Type", "Year",
	}, table.Columns())

	wantTypes := []string{
		"Residential", "Residential", "Residential", "Condo", "Residential",
		"Commercial", "Family", "Residential", "Residential", "Condo",
	}
	wantYears := []int{2019, 2019, 2020, 2020, 2020, 2021, 2021, 2021, 2021, 2021}
	for i, rec := range table.Records() {
		assert.Equal(t, wantTypes[i], rec.PropertyType, "row %d", i+1)
		assert.Equal(t, wantYears[i], rec.Year, "row %d", i+1)
		assert.NotContains(t, []string{"-1", "Unknown", ""}, rec.ResidentialType, "row %d", i+1)
		assert.False(t, rec.SalesRatio.Valid, "ratio is not derived during preparation")
	}

	report := table.Report()
	assert.Equal(t, 10, report.Rows)
	assert.Equal(t, "Residential", report.Modes[domain.ColumnPropertyType])
	assert.Equal(t, "Condo", report.Modes[domain.ColumnResidentialType], "tie goes to the first value seen")
	assert.Equal(t, 2, report.ImputedCounts[domain.ColumnPropertyType])
	assert.Equal(t, 2, report.ImputedCounts[domain.ColumnResidentialType])
	assert.Equal(t, 1, report.UndefinedCounts[domain.ColumnSaleAmount])
	assert.Len(t, report.DroppedColumns, 9)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, NumericCoercionWarning{Row: 5, Column: domain.ColumnSaleAmount, Value: "n/a"}, report.Warnings[0])
}

func TestPrepare_EndToEndRow(t *testing.T) {
	header := []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type", "Town"}
	raw := rawTable(header,
		[]string{"2019-05-01", "900000", "1,200,000", "-1", "Condo", "Ansonia"},
		[]string{"2019-06-01", "100000", "150000", "Residential", "Single Family", "Ansonia"},
		[]string{"2019-07-01", "110000", "160000", "Residential", "Single Family", "Ansonia"},
	)

	table, err := Prepare(raw, DefaultOptions())
	require.NoError(t, err)

	got := table.Record(0)
	assert.Equal(t, domain.PreparedRecord{
		Year:            2019,
		AssessedValue:   domain.Some(900000),
		SaleAmount:      domain.Some(1200000),
		PropertyType:    "Residential",
		ResidentialType: "Condo",
	}, got)
	assert.Equal(t, []string{"Assessed Value", "Sale Amount", "Property Type", "Residential Type", "Year"}, table.Columns())
}

func TestPrepare_DoesNotModifyInput(t *testing.T) {
	raw := loadSample(t)
	before := make([][]string, len(raw.Rows))
	for i, row := range raw.Rows {
		before[i] = append([]string(nil), row...)
	}

	_, err := Prepare(raw, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, raw.Rows)
	assert.Len(t, raw.Header, 14)
}

func TestPrepare_Deterministic(t *testing.T) {
	a := prepareSample(t)
	b := prepareSample(t)
	assert.Equal(t, a.Records(), b.Records())
	assert.Equal(t, a.Report(), b.Report())
}

func TestPrepare_SchemaError(t *testing.T) {
	raw := rawTable([]string{"Date Recorded", "Sale Amount", "Town"},
		[]string{"2020-01-01", "100", "X"})

	_, err := Prepare(raw, DefaultOptions())
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Assessed Value", "Property Type", "Residential Type"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "Assessed Value")
}

func TestPrepare_RaggedRow(t *testing.T) {
	header := []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type"}
	raw := rawTable(header,
		[]string{"2020-01-01", "1", "2", "Condo", "Condo"},
		[]string{"2020-01-01", "1", "2"},
	)

	_, err := Prepare(raw, DefaultOptions())
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 2, schemaErr.Row)
	assert.Equal(t, 3, schemaErr.Width)
}

func TestPrepare_DateParseError(t *testing.T) {
	header := []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type"}

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not a date"},
		{"empty", ""},
		{"missing marker", "NaN"},
		{"impossible day", "2020-02-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawTable(header,
				[]string{"2020-01-01", "1", "2", "Condo", "Condo"},
				[]string{tt.value, "1", "2", "Condo", "Condo"},
			)
			table, err := Prepare(raw, DefaultOptions())
			assert.Nil(t, table)
			var dateErr *DateParseError
			require.ErrorAs(t, err, &dateErr)
			assert.Equal(t, 2, dateErr.Row)
			assert.Equal(t, tt.value, dateErr.Value)
		})
	}
}

func TestPrepare_InsufficientData(t *testing.T) {
	header := []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type"}
	raw := rawTable(header,
		[]string{"2020-01-01", "1", "2", "Condo", "-1"},
		[]string{"2020-01-01", "1", "2", "Condo", "Unknown"},
		[]string{"2020-01-01", "1", "2", "Condo", ""},
	)

	_, err := Prepare(raw, DefaultOptions())
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, domain.ColumnResidentialType, insufficient.Column)
}

func TestPrepare_NoSentinelsRemain(t *testing.T) {
	header := []string{"Date Recorded", "Assessed Value", "Sale Amount", "Property Type", "Residential Type"}
	values := []string{"-1", "Unknown", "", "NA", "Condo", "Residential", "Two Family", "<nil>"}

	var rows [][]string
	for i, pt := range values {
		rt := values[(i+3)%len(values)]
		rows = append(rows, []string{"2021-01-01", "10", "20", pt, rt})
	}

	table, err := Prepare(rawTable(header, rows...), DefaultOptions())
	require.NoError(t, err)
	for _, rec := range table.Records() {
		assert.NotContains(t, []string{"-1", "Unknown", "", "NA", "<nil>"}, rec.PropertyType)
		assert.NotContains(t, []string{"-1", "Unknown", "", "NA", "<nil>"}, rec.ResidentialType)
	}
}

func TestExtractYears_Layouts(t *testing.T) {
	raw := rawTable([]string{"Date Recorded"},
		[]string{"2019-05-01"},
		[]string{"05/01/2018"},
		[]string{"5/1/2017"},
		[]string{"2016-05-01 10:00:00"},
		[]string{"05/01/2015 00:00:00"},
		[]string{"2014-05-01T00:00:00Z"},
		[]string{" 2013-05-01 "},
	)

	years, err := ExtractYears(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2018, 2017, 2016, 2015, 2014, 2013}, years)
}

func TestImputeMode(t *testing.T) {
	sentinels := []string{"-1", "Unknown"}

	t.Run("first seen wins ties", func(t *testing.T) {
		raw := rawTable([]string{"Property Type"},
			[]string{"Condo"}, []string{"Residential"}, []string{"Residential"},
			[]string{"Condo"}, []string{"-1"})

		out, mode, replaced, err := ImputeMode(raw, "Property Type", sentinels)
		require.NoError(t, err)
		assert.Equal(t, "Condo", mode)
		assert.Equal(t, 1, replaced)
		assert.Equal(t, []string{"Condo", "Residential", "Residential", "Condo", "Condo"}, out.Column("Property Type"))
		assert.Equal(t, "-1", raw.Rows[4][0], "input untouched")
	})

	t.Run("sentinels never become the mode", func(t *testing.T) {
		raw := rawTable([]string{"Property Type"},
			[]string{"Unknown"}, []string{"Unknown"}, []string{"Unknown"}, []string{"Condo"})

		_, mode, replaced, err := ImputeMode(raw, "Property Type", sentinels)
		require.NoError(t, err)
		assert.Equal(t, "Condo", mode)
		assert.Equal(t, 3, replaced)
	})

	t.Run("custom sentinel set", func(t *testing.T) {
		raw := rawTable([]string{"Property Type"}, []string{"N/A"}, []string{"Condo"})
		out, _, replaced, err := ImputeMode(raw, "Property Type", []string{"N/A"})
		require.NoError(t, err)
		assert.Equal(t, 1, replaced)
		assert.Equal(t, []string{"Condo", "Condo"}, out.Column("Property Type"))
	})

	t.Run("absent column", func(t *testing.T) {
		_, _, _, err := ImputeMode(rawTable([]string{"Town"}), "Property Type", sentinels)
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})
}

func TestCoerceNumeric(t *testing.T) {
	raw := rawTable([]string{"Sale Amount"},
		[]string{"1,200,000"},
		[]string{" 42.5 "},
		[]string{""},
		[]string{"NaN"},
		[]string{"$100"},
		[]string{"Inf"},
		[]string{"0"},
	)

	values, warnings := CoerceNumeric(raw, "Sale Amount")
	assert.Equal(t, []domain.OptionalFloat{
		domain.Some(1200000),
		domain.Some(42.5),
		domain.Undefined(),
		domain.Undefined(),
		domain.Undefined(),
		domain.Undefined(),
		domain.Some(0),
	}, values)
	assert.Equal(t, []NumericCoercionWarning{
		{Row: 5, Column: "Sale Amount", Value: "$100"},
		{Row: 6, Column: "Sale Amount", Value: "Inf"},
	}, warnings)
}

func TestDropColumns_Idempotent(t *testing.T) {
	raw := loadSample(t)
	names := DefaultOptions().DropColumns

	once := DropColumns(raw, names)
	twice := DropColumns(once, names)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Assessed Value", "Sale Amount", "Sales Ratio", "Property Type", "Residential Type"}, once.Header)
	assert.Len(t, raw.Header, 14, "input untouched")

	unchanged := DropColumns(once, []string{"Not There"})
	assert.Equal(t, once, unchanged)
}

func TestNormalizePropertyType(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		in   string
		want string
	}{
		{"Three Family", "Family"},
		{"Single Family", "Family"},
		{"Condo", "Condo"},
		{"", "Unknown"},
		{"NaN", "Unknown"},
		{"family home", "family home"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePropertyType(tt.in, opts))
		})
	}
}

func TestNewOptions_FromConfig(t *testing.T) {
	cfg := config.DatasetConfig{
		Sentinels:      []string{"?"},
		DropColumns:    []string{"Town"},
		CategoryGroups: map[string]string{"Condo": "Apartment"},
	}

	opts := NewOptions(cfg)
	assert.Equal(t, "Unknown", opts.UnknownLabel)
	assert.Equal(t, []config.CategoryGroup{{Substring: "Condo", Target: "Apartment"}}, opts.CategoryGroups)
	assert.Equal(t, "Apartment", NormalizePropertyType("Condo", opts))
	assert.Equal(t, "Three Family", NormalizePropertyType("Three Family", opts))
}

func TestPrepare_DropListCannotRemoveModelledColumns(t *testing.T) {
	opts := DefaultOptions()
	opts.DropColumns = append(opts.DropColumns, domain.ColumnSaleAmount)

	table, err := Prepare(loadSample(t), opts)
	require.NoError(t, err)
	assert.Contains(t, table.Columns(), domain.ColumnSaleAmount)
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&SchemaError{Row: 3, Width: 2}).Error(), "row 3")
	assert.Contains(t, (&DateParseError{Row: 7, Value: "x"}).Error(), "row 7")
	assert.Contains(t, (&InsufficientDataError{Column: "Property Type"}).Error(), "Property Type")
	assert.Contains(t, NumericCoercionWarning{Row: 1, Column: "Sale Amount", Value: "n/a"}.String(), "n/a")
	assert.True(t, errors.Is(ErrUnknownColumn, ErrUnknownColumn))
}

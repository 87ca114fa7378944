package domain

// Raw column names of the transactions dataset
const (
	ColumnSerialNumber    = "Serial Number"
	ColumnListYear        = "List Year"
	ColumnDateRecorded    = "Date Recorded"
	ColumnTown            = "Town"
	ColumnAddress         = "Address"
	ColumnAssessedValue   = "Assessed Value"
	ColumnSaleAmount      = "Sale Amount"
	ColumnSalesRatio      = "Sales Ratio"
	ColumnPropertyType    = "Property Type"
	ColumnResidentialType = "Residential Type"
	ColumnNonUseCode      = "Non Use Code"
	ColumnAssessorRemarks = "Assessor Remarks"
	ColumnOPMRemarks      = "OPM remarks"
	ColumnLocation        = "Location"

	// ColumnYear is derived from Date Recorded during preparation
	ColumnYear = "Year"
)

// PreparedRecord is one row of the prepared table.
// SalesRatio stays undefined until the sales ratio query derives it.
type PreparedRecord struct {
	Year            int           `json:"year"`
	AssessedValue   OptionalFloat `json:"assessed_value"`
	SaleAmount      OptionalFloat `json:"sale_amount"`
	PropertyType    string        `json:"property_type"`
	ResidentialType string        `json:"residential_type"`
	SalesRatio      OptionalFloat `json:"sales_ratio"`
}

// PredictionInput is a single prediction request record.
// It is never imputed or normalized.
type PredictionInput struct {
	AssessedValue   float64 `json:"assessed_value"`
	Year            int     `json:"year"`
	PropertyType    string  `json:"property_type"`
	ResidentialType string  `json:"residential_type"`
}

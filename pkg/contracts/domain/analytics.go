package domain

// YearMean is the mean of a numeric column for one year
type YearMean struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// TypeStats summarizes a numeric column for one property type
type TypeStats struct {
	PropertyType string  `json:"property_type"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Count        int     `json:"count"`
}

// HistogramBin is one bucket of a histogram, [Lower, Upper) except the last
// bin which also includes Upper.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// BoxStats is the five-number summary of a group
type BoxStats struct {
	Group  string  `json:"group"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Trendline is an ordinary least squares fit y = Intercept + Slope*x
type Trendline struct {
	XColumn   string  `json:"x_column"`
	YColumn   string  `json:"y_column"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	RSquared  float64 `json:"r_squared"`
	Points    int     `json:"points"`
}

// DatasetOverview describes the loaded dataset
type DatasetOverview struct {
	Fingerprint     string            `json:"fingerprint"`
	Source          string            `json:"source"`
	Rows            int               `json:"rows"`
	Columns         []string          `json:"columns"`
	MinYear         int               `json:"min_year"`
	MaxYear         int               `json:"max_year"`
	PropertyTypes   []string          `json:"property_types"`
	ImputedCounts   map[string]int    `json:"imputed_counts"`
	Modes           map[string]string `json:"modes"`
	UndefinedCounts map[string]int    `json:"undefined_counts"`
	WarningCount    int               `json:"warning_count"`
}

// QueryFilter selects the rows a dashboard query runs over. Years are
// inclusive. A nil PropertyTypes selects every type, an empty one none.
type QueryFilter struct {
	YearMin       int      `json:"year_min"`
	YearMax       int      `json:"year_max"`
	PropertyTypes []string `json:"property_types"`
}

// YearlySeries is the per-year mean of one column
type YearlySeries struct {
	Column string     `json:"column"`
	Points []YearMean `json:"points"`
}

// TablePreview is the first rows of the prepared table as text
type TablePreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

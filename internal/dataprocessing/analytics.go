package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// FilterByYearRangeAndTypes keeps rows with yearMin <= Year <= yearMax and a
// property type in types. An empty type set selects nothing.
func FilterByYearRangeAndTypes(t *Table, yearMin, yearMax int, types []string) *Table {
	if len(types) == 0 || yearMin > yearMax {
		return t.derive(0)
	}

	allowed := make(map[string]bool, len(types))
	for _, pt := range types {
		allowed[pt] = true
	}

	out := t.derive(0)
	for i, rec := range t.records {
		if rec.Year < yearMin || rec.Year > yearMax || !allowed[rec.PropertyType] {
			continue
		}
		out.append(rec, t.extras[i])
	}
	return out
}

// GroupMeanByYear averages the defined values of column per year. Years
// without a defined value are left out; the result is ordered by year.
func GroupMeanByYear(t *Table, column string) ([]domain.YearMean, error) {
	values, err := t.Numeric(column)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]float64)
	for i, v := range values {
		if x, ok := v.Get(); ok {
			year := t.records[i].Year
			groups[year] = append(groups[year], x)
		}
	}

	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	sort.Ints(years)

	result := make([]domain.YearMean, 0, len(years))
	for _, y := range years {
		result = append(result, domain.YearMean{
			Year:  y,
			Mean:  stat.Mean(groups[y], nil),
			Count: len(groups[y]),
		})
	}
	return result, nil
}

// GroupStatsByType computes mean, median and count of the defined values of
// column per property type. Types without a defined value are left out.
func GroupStatsByType(t *Table, column string) (map[string]domain.TypeStats, error) {
	values, err := t.Numeric(column)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i, rec := range t.records {
		if x, ok := values[i].Get(); ok {
			groups[rec.PropertyType] = append(groups[rec.PropertyType], x)
		}
	}

	result := make(map[string]domain.TypeStats, len(groups))
	for pt, xs := range groups {
		sorted := sortedCopy(xs)
		result[pt] = domain.TypeStats{
			PropertyType: pt,
			Mean:         stat.Mean(sorted, nil),
			Median:       median(sorted),
			Count:        len(sorted),
		}
	}
	return result, nil
}

// SortStatsByMean orders type statistics by descending mean, then by name
func SortStatsByMean(stats map[string]domain.TypeStats) []domain.TypeStats {
	out := make([]domain.TypeStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].PropertyType < out[j].PropertyType
	})
	return out
}

// SalesRatio returns a copy of t with SalesRatio = AssessedValue / SaleAmount.
// The ratio is undefined when either operand is undefined or the sale amount is zero.
func SalesRatio(t *Table) *Table {
	out := t.derive(t.Len())
	out.ratioDerived = true
	if !containsString(out.columns, domain.ColumnSalesRatio) {
		out.columns = append(append([]string(nil), t.columns...), domain.ColumnSalesRatio)
	}

	for i, rec := range t.records {
		rec.SalesRatio = ratio(rec.AssessedValue, rec.SaleAmount)
		out.append(rec, t.extras[i])
	}
	return out
}

func ratio(assessed, sale domain.OptionalFloat) domain.OptionalFloat {
	a, okA := assessed.Get()
	s, okS := sale.Get()
	if !okA || !okS || s == 0 {
		return domain.Undefined()
	}
	return domain.Some(a / s)
}

// Histogram counts the defined values of column into bins equal-width
// buckets spanning [min, max].
func Histogram(t *Table, column string, bins int) ([]domain.HistogramBin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}

	xs, err := definedValues(t, column)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return []domain.HistogramBin{}, nil
	}

	sorted := sortedCopy(xs)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []domain.HistogramBin{{Lower: lo, Upper: hi, Count: len(sorted)}}, nil
	}

	// The last divider must lie strictly above every value
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	result := make([]domain.HistogramBin, bins)
	for i := range result {
		result[i] = domain.HistogramBin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	result[bins-1].Upper = hi
	return result, nil
}

// BoxStatsByYear returns the five-number summary of column per year, ordered by year
func BoxStatsByYear(t *Table, column string) ([]domain.BoxStats, error) {
	return boxStats(t, column, func(r *domain.PreparedRecord) string {
		return strconv.Itoa(r.Year)
	}, func(a, b string) bool {
		ya, _ := strconv.Atoi(a)
		yb, _ := strconv.Atoi(b)
		return ya < yb
	})
}

// BoxStatsByType returns the five-number summary of column per property type, ordered by name
func BoxStatsByType(t *Table, column string) ([]domain.BoxStats, error) {
	return boxStats(t, column, func(r *domain.PreparedRecord) string {
		return r.PropertyType
	}, func(a, b string) bool { return a < b })
}

func boxStats(t *Table, column string, key func(*domain.PreparedRecord) string, less func(a, b string) bool) ([]domain.BoxStats, error) {
	values, err := t.Numeric(column)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i := range t.records {
		if x, ok := values[i].Get(); ok {
			k := key(&t.records[i])
			groups[k] = append(groups[k], x)
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	result := make([]domain.BoxStats, 0, len(keys))
	for _, k := range keys {
		sorted := sortedCopy(groups[k])
		result = append(result, domain.BoxStats{
			Group:  k,
			Min:    sorted[0],
			Q1:     quantile(sorted, 0.25),
			Median: quantile(sorted, 0.5),
			Q3:     quantile(sorted, 0.75),
			Max:    sorted[len(sorted)-1],
			Count:  len(sorted),
		})
	}
	return result, nil
}

// Trendline fits yColumn against xColumn by ordinary least squares over
// rows where both values are defined.
func Trendline(t *Table, xColumn, yColumn string) (*domain.Trendline, error) {
	xv, err := t.Numeric(xColumn)
	if err != nil {
		return nil, err
	}
	yv, err := t.Numeric(yColumn)
	if err != nil {
		return nil, err
	}

	var xs, ys []float64
	for i := range xv {
		x, okX := xv[i].Get()
		y, okY := yv[i].Get()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return nil, fmt.Errorf("%w: trendline needs two distinct %s values", ErrInsufficientPoints, xColumn)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return &domain.Trendline{
		XColumn:   xColumn,
		YColumn:   yColumn,
		Intercept: alpha,
		Slope:     beta,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
		Points:    len(xs),
	}, nil
}

// YearBounds returns the smallest and largest year, or ok=false for an empty table
func YearBounds(t *Table) (minYear, maxYear int, ok bool) {
	if t.Len() == 0 {
		return 0, 0, false
	}
	minYear, maxYear = t.records[0].Year, t.records[0].Year
	for _, rec := range t.records[1:] {
		if rec.Year < minYear {
			minYear = rec.Year
		}
		if rec.Year > maxYear {
			maxYear = rec.Year
		}
	}
	return minYear, maxYear, true
}

// PropertyTypes lists the distinct property types in first-seen order
func PropertyTypes(t *Table) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range t.records {
		if !seen[rec.PropertyType] {
			seen[rec.PropertyType] = true
			out = append(out, rec.PropertyType)
		}
	}
	return out
}

func definedValues(t *Table, column string) ([]float64, error) {
	values, err := t.Numeric(column)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if x, ok := v.Get(); ok {
			xs = append(xs, x)
		}
	}
	return xs, nil
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// median of sorted data; the mean of the two middle values for even lengths
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quantile interpolates linearly between closest ranks of sorted data
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/exporter"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// DatasetInfo identifies the loaded dataset
type DatasetInfo struct {
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// DatasetService answers dashboard queries over the prepared table. The
// table is built once and never modified, so methods need no locking.
type DatasetService struct {
	table   *dataprocessing.Table
	info    DatasetInfo
	cfg     config.DatasetConfig
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// LoadDataset reads the dataset file and runs the preparation pipeline.
// Any failure is fatal for the caller; no partial table is returned.
func LoadDataset(ctx context.Context, path string, cfg config.DatasetConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*DatasetService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	table, src, err := loadAndPrepare(path, cfg)
	infrastructure.RecordDatasetLoad(ctx, metrics, format, time.Since(start), err)
	if err != nil {
		logger.ErrorContext(ctx, "Dataset preparation failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, apierrors.NewDatasetError("failed to prepare dataset", err).
			WithContext("path", path)
	}

	report := table.Report()
	for _, w := range report.Warnings {
		logger.WarnContext(ctx, "Numeric value coerced to undefined",
			slog.Int("row", w.Row),
			slog.String("column", w.Column),
			slog.String("value", w.Value))
	}
	logger.InfoContext(ctx, "Dataset prepared",
		slog.String("path", path),
		slog.String("fingerprint", src.Fingerprint),
		slog.Int("rows", table.Len()),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", time.Since(start)))

	info := DatasetInfo{
		Path:        src.Path,
		Format:      src.Format,
		Fingerprint: src.Fingerprint,
		LoadedAt:    time.Now().UTC(),
	}
	return NewDatasetService(table, info, cfg, metrics, logger), nil
}

func loadAndPrepare(path string, cfg config.DatasetConfig) (*dataprocessing.Table, *dataprocessing.Source, error) {
	src, err := dataprocessing.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	table, err := dataprocessing.Prepare(src.Table, dataprocessing.NewOptions(cfg))
	if err != nil {
		return nil, nil, err
	}
	return table, src, nil
}

// NewDatasetService wraps an already prepared table
func NewDatasetService(table *dataprocessing.Table, info DatasetInfo, cfg config.DatasetConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		table:   table,
		info:    info,
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("component", "dataset_service")),
	}
}

// Info returns the identity of the loaded dataset
func (s *DatasetService) Info() DatasetInfo {
	return s.info
}

// Table returns the prepared table
func (s *DatasetService) Table() *dataprocessing.Table {
	return s.table
}

// Gauges exposes the table size to the metrics pipeline
func (s *DatasetService) Gauges() infrastructure.DatasetGauges {
	return infrastructure.DatasetGauges{
		Rows: func() int64 { return int64(s.table.Len()) },
		Undefined: func() map[string]int64 {
			report := s.table.Report()
			out := map[string]int64{
				domain.ColumnSaleAmount:    0,
				domain.ColumnAssessedValue: 0,
			}
			for column, n := range report.UndefinedCounts {
				out[column] = int64(n)
			}
			return out
		},
	}
}

// Overview describes the dataset and the default filter bounds
func (s *DatasetService) Overview(ctx context.Context) domain.DatasetOverview {
	s.record(ctx, "overview")
	report := s.table.Report()
	minYear, maxYear, _ := dataprocessing.YearBounds(s.table)
	return domain.DatasetOverview{
		Fingerprint:     s.info.Fingerprint,
		Source:          filepath.Base(s.info.Path),
		Rows:            s.table.Len(),
		Columns:         s.table.Columns(),
		MinYear:         minYear,
		MaxYear:         maxYear,
		PropertyTypes:   dataprocessing.PropertyTypes(s.table),
		ImputedCounts:   report.ImputedCounts,
		Modes:           report.Modes,
		UndefinedCounts: report.UndefinedCounts,
		WarningCount:    len(report.Warnings),
	}
}

// Preview returns the first limit rows, capped at MaxPreviewRows. A
// non-positive limit uses the configured default.
func (s *DatasetService) Preview(ctx context.Context, limit int) domain.TablePreview {
	s.record(ctx, "preview")
	if limit <= 0 {
		limit = s.cfg.PreviewRows
	}
	if limit > config.MaxPreviewRows {
		limit = config.MaxPreviewRows
	}

	head := s.table.Head(limit)
	rows := make([][]string, head.Len())
	for i := range rows {
		rows[i] = head.Row(i)
	}
	return domain.TablePreview{
		Columns: head.Columns(),
		Rows:    rows,
		Total:   s.table.Len(),
	}
}

// Filter applies f, filling zero years and a nil type list from the table.
// The returned filter is the one that was applied.
func (s *DatasetService) Filter(ctx context.Context, f domain.QueryFilter) (*dataprocessing.Table, domain.QueryFilter) {
	_, span := s.tracer.Start(ctx, "dataset.filter")
	defer span.End()

	minYear, maxYear, _ := dataprocessing.YearBounds(s.table)
	if f.YearMin == 0 {
		f.YearMin = minYear
	}
	if f.YearMax == 0 {
		f.YearMax = maxYear
	}
	if f.PropertyTypes == nil {
		f.PropertyTypes = dataprocessing.PropertyTypes(s.table)
	}

	out := dataprocessing.FilterByYearRangeAndTypes(s.table, f.YearMin, f.YearMax, f.PropertyTypes)
	span.SetAttributes(
		attribute.Int("filter.year_min", f.YearMin),
		attribute.Int("filter.year_max", f.YearMax),
		attribute.Int("filter.types", len(f.PropertyTypes)),
		attribute.Int("filter.rows", out.Len()),
	)
	return out, f
}

// YearlyMeans averages each column per year over the filtered rows
func (s *DatasetService) YearlyMeans(ctx context.Context, f domain.QueryFilter, columns ...string) ([]domain.YearlySeries, error) {
	s.record(ctx, "yearly")
	if len(columns) == 0 {
		columns = []string{domain.ColumnSaleAmount, domain.ColumnAssessedValue}
	}

	table, _ := s.Filter(ctx, f)
	out := make([]domain.YearlySeries, 0, len(columns))
	for _, c := range columns {
		points, err := dataprocessing.GroupMeanByYear(table, c)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.YearlySeries{Column: c, Points: points})
	}
	return out, nil
}

// TypeStats returns mean, median and count of column per property type,
// ordered by descending mean
func (s *DatasetService) TypeStats(ctx context.Context, f domain.QueryFilter, column string) ([]domain.TypeStats, error) {
	s.record(ctx, "by_type")
	table, _ := s.Filter(ctx, f)
	stats, err := dataprocessing.GroupStatsByType(table, s.columnOrDefault(column))
	if err != nil {
		return nil, err
	}
	return dataprocessing.SortStatsByMean(stats), nil
}

// SalesRatioByType derives the sales ratio and summarizes it per property type
func (s *DatasetService) SalesRatioByType(ctx context.Context, f domain.QueryFilter) ([]domain.BoxStats, error) {
	s.record(ctx, "sales_ratio")
	table, _ := s.Filter(ctx, f)
	return dataprocessing.BoxStatsByType(dataprocessing.SalesRatio(table), domain.ColumnSalesRatio)
}

// Distribution buckets column over the filtered rows. A non-positive bin
// count uses the configured default.
func (s *DatasetService) Distribution(ctx context.Context, f domain.QueryFilter, column string, bins int) ([]domain.HistogramBin, error) {
	s.record(ctx, "distribution")
	if bins <= 0 {
		bins = s.cfg.HistogramBins
	}
	table, _ := s.Filter(ctx, f)
	return dataprocessing.Histogram(table, s.columnOrDefault(column), bins)
}

// BoxByYear summarizes column per year over the filtered rows
func (s *DatasetService) BoxByYear(ctx context.Context, f domain.QueryFilter, column string) ([]domain.BoxStats, error) {
	s.record(ctx, "box_by_year")
	table, _ := s.Filter(ctx, f)
	return dataprocessing.BoxStatsByYear(table, s.columnOrDefault(column))
}

// Trend fits Sale Amount against Assessed Value over the filtered rows
func (s *DatasetService) Trend(ctx context.Context, f domain.QueryFilter) (*domain.Trendline, error) {
	s.record(ctx, "trend")
	table, _ := s.Filter(ctx, f)
	return dataprocessing.Trendline(table, domain.ColumnAssessedValue, domain.ColumnSaleAmount)
}

// Export writes the filtered rows to out
func (s *DatasetService) Export(ctx context.Context, out io.Writer, f domain.QueryFilter, format exporter.Format) error {
	table, applied := s.Filter(ctx, f)
	if err := exporter.Write(out, table, format); err != nil {
		return apierrors.NewExportError("failed to write export", err).
			WithContext("format", string(format))
	}
	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	}
	s.logger.InfoContext(ctx, "Dataset exported",
		slog.String("format", string(format)),
		slog.Int("rows", table.Len()),
		slog.Int("year_min", applied.YearMin),
		slog.Int("year_max", applied.YearMax))
	return nil
}

// ExportFile writes the whole prepared table into the exports directory
func (s *DatasetService) ExportFile(ctx context.Context, w *exporter.Writer, name string, format exporter.Format) (string, error) {
	path, err := w.Export(name, s.table, format)
	if err != nil {
		return "", apierrors.NewExportError(fmt.Sprintf("failed to export %s", name), err)
	}
	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", string(format))))
	}
	return path, nil
}

func (s *DatasetService) columnOrDefault(column string) string {
	if column == "" {
		return domain.ColumnSaleAmount
	}
	return column
}

func (s *DatasetService) record(ctx context.Context, kind string) {
	infrastructure.RecordQuery(ctx, s.metrics, kind)
}

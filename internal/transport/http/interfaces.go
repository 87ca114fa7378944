package http

import (
	"context"
	"io"

	"github.com/IsnaAyustin/final-project-ds/internal/exporter"
	"github.com/IsnaAyustin/final-project-ds/internal/services"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dashboard queries over the prepared table
type DatasetServiceInterface interface {
	Overview(ctx context.Context) domain.DatasetOverview
	Preview(ctx context.Context, limit int) domain.TablePreview
	YearlyMeans(ctx context.Context, f domain.QueryFilter, columns ...string) ([]domain.YearlySeries, error)
	TypeStats(ctx context.Context, f domain.QueryFilter, column string) ([]domain.TypeStats, error)
	SalesRatioByType(ctx context.Context, f domain.QueryFilter) ([]domain.BoxStats, error)
	Distribution(ctx context.Context, f domain.QueryFilter, column string, bins int) ([]domain.HistogramBin, error)
	BoxByYear(ctx context.Context, f domain.QueryFilter, column string) ([]domain.BoxStats, error)
	Trend(ctx context.Context, f domain.QueryFilter) (*domain.Trendline, error)
	Export(ctx context.Context, out io.Writer, f domain.QueryFilter, format exporter.Format) error
}

// PredictionServiceInterface defines the operations behind the prediction form
type PredictionServiceInterface interface {
	Options() domain.PredictionOptions
	CheckBounds(in domain.PredictionInput) error
	Predict(ctx context.Context, in domain.PredictionInput, explain bool) (*domain.PredictionResult, error)
}

// HealthServiceInterface defines the health and version probes
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ DatasetServiceInterface    = (*services.DatasetService)(nil)
	_ PredictionServiceInterface = (*services.PredictionService)(nil)
	_ HealthServiceInterface     = (*services.HealthService)(nil)
)

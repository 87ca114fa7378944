package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/exporter"
	"github.com/IsnaAyustin/final-project-ds/internal/services"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Overview(ctx context.Context) domain.DatasetOverview {
	args := m.Called()
	return args.Get(0).(domain.DatasetOverview)
}

func (m *MockDatasetService) Preview(ctx context.Context, limit int) domain.TablePreview {
	args := m.Called(limit)
	return args.Get(0).(domain.TablePreview)
}

func (m *MockDatasetService) YearlyMeans(ctx context.Context, f domain.QueryFilter, columns ...string) ([]domain.YearlySeries, error) {
	args := m.Called(f, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearlySeries), args.Error(1)
}

func (m *MockDatasetService) TypeStats(ctx context.Context, f domain.QueryFilter, column string) ([]domain.TypeStats, error) {
	args := m.Called(f, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TypeStats), args.Error(1)
}

func (m *MockDatasetService) SalesRatioByType(ctx context.Context, f domain.QueryFilter) ([]domain.BoxStats, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BoxStats), args.Error(1)
}

func (m *MockDatasetService) Distribution(ctx context.Context, f domain.QueryFilter, column string, bins int) ([]domain.HistogramBin, error) {
	args := m.Called(f, column, bins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistogramBin), args.Error(1)
}

func (m *MockDatasetService) BoxByYear(ctx context.Context, f domain.QueryFilter, column string) ([]domain.BoxStats, error) {
	args := m.Called(f, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BoxStats), args.Error(1)
}

func (m *MockDatasetService) Trend(ctx context.Context, f domain.QueryFilter) (*domain.Trendline, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trendline), args.Error(1)
}

func (m *MockDatasetService) Export(ctx context.Context, out io.Writer, f domain.QueryFilter, format exporter.Format) error {
	args := m.Called(out, f, format)
	return args.Error(0)
}

// MockPredictionService is a mock implementation of PredictionServiceInterface
type MockPredictionService struct {
	mock.Mock
}

func (m *MockPredictionService) Options() domain.PredictionOptions {
	args := m.Called()
	return args.Get(0).(domain.PredictionOptions)
}

func (m *MockPredictionService) CheckBounds(in domain.PredictionInput) error {
	args := m.Called(in)
	return args.Error(0)
}

func (m *MockPredictionService) Predict(ctx context.Context, in domain.PredictionInput, explain bool) (*domain.PredictionResult, error) {
	args := m.Called(in, explain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PredictionResult), args.Error(1)
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

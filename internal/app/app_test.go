package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/shared/testutil"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "sales.csv", testutil.TransactionsCSV)
	testutil.CopyModel(t, dir, "model.json")

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		BaseDir:     dir,
		DataDir:     ".",
		DatasetFile: "sales.csv",
		ModelFile:   "model.json",
		ExportsDir:  "exports",
		LogsDir:     "logs",
	}
	cfg.Telemetry.Environment = "test"
	return cfg
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	app, err := New(context.Background(), testConfig(t), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func do(app *Application, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestNew_LoadsDatasetAndModel(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, 5, app.Dataset.Table().Len())
	assert.Equal(t, testutil.ModelName, app.Prediction.ModelName())
	assert.True(t, app.Health.Ready(context.Background()))
	assert.Equal(t, ":8080", app.Server.Addr)
}

func TestNew_MissingInputs(t *testing.T) {
	t.Run("dataset", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Paths.DatasetFile = "absent.csv"
		_, err := New(context.Background(), cfg, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent.csv")
	})

	t.Run("model", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Paths.ModelFile = "absent.json"
		_, err := New(context.Background(), cfg, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MODEL")
	})
}

func TestRouter_HealthAndVersion(t *testing.T) {
	app := newTestApp(t)

	w := do(app, http.MethodGet, "/api/health/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	w = do(app, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model":"gbr-sale-amount@v1"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouter_EDA(t *testing.T) {
	app := newTestApp(t)

	w := do(app, http.MethodGet, "/api/eda/overview", "")
	require.Equal(t, http.StatusOK, w.Code)
	var overview domain.DatasetOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 5, overview.Rows)
	assert.Equal(t, 2019, overview.MinYear)
	assert.Equal(t, 2021, overview.MaxYear)

	w = do(app, http.MethodGet, "/api/eda/yearly?year_min=2020&year_max=2020&column=sale_amount", "")
	require.Equal(t, http.StatusOK, w.Code)
	var series []domain.YearlySeries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 1)
	assert.Equal(t, 2020, series[0].Points[0].Year)
	assert.Equal(t, 200.0, series[0].Points[0].Mean)

	w = do(app, http.MethodGet, "/api/eda/yearly?types=", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	for _, s := range series {
		assert.Empty(t, s.Points)
	}

	w = do(app, http.MethodGet, "/api/eda/export.csv?types=Condo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "Condo")
	assert.NotContains(t, w.Body.String(), "Commercial")
}

func TestRouter_Prediction(t *testing.T) {
	app := newTestApp(t)

	body := `{"assessed_value":250000,"year":2022,"property_type":"Residential","residential_type":"Single Family"}`
	w := do(app, http.MethodPost, "/api/prediction?explain=true", body)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 400000.0, result.PredictedPrice, 1e-6)
	assert.InDelta(t, 150000.0, result.Difference, 1e-6)
	require.NotNil(t, result.Attribution)

	unknown := `{"assessed_value":250000,"year":2022,"property_type":"Public Utility","residential_type":"Single Family"}`
	w = do(app, http.MethodPost, "/api/prediction", unknown)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	outOfRange := `{"assessed_value":250000,"year":2030,"property_type":"Residential","residential_type":"Single Family"}`
	w = do(app, http.MethodPost, "/api/prediction", outOfRange)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(app, http.MethodGet, "/api/prediction/options", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"min_year":2017`)
}

func TestRouter_NotFoundAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := do(app, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"status":404`)

	w = do(app, http.MethodDelete, "/api/eda/overview", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	_ = do(app, http.MethodGet, "/api/eda/trend", "")

	w = do(app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dataset_rows")
	assert.Contains(t, w.Body.String(), "eda_queries_total")
}

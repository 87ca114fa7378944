package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seenReqID, seenTrace string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenReqID = middleware.GetReqID(r.Context())
		seenTrace = infrastructure.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Len(t, seenReqID, 36)
	assert.Equal(t, seenReqID, seenTrace)
	assert.Equal(t, seenReqID, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "client-id", seenReqID)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, discardLogger())
	handler := rl.Handler(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/eda/overview", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/eda/overview", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), apierrors.TypeRateLimit)
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/eda/trend", nil))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/ws/predict", nil)
	req.Header.Set("Upgrade", "websocket")
	hasDeadline = false
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, hasDeadline)
}

func TestCORS(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/prediction", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/prediction/options", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureHeaders(t *testing.T) {
	handler := DefaultSecureHeaders().Handler(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/eda/yearly?year_min=2019&bins=abc&explain=yes&column=Sale+Amount&types=Condo,Residential&types=Apartments", nil)
	q := NewQueryParams(req)

	n, err := q.Int("year_min", 1900, 2100, 0)
	require.NoError(t, err)
	assert.Equal(t, 2019, n)

	n, err = q.Int("year_max", 1900, 2100, 2100)
	require.NoError(t, err)
	assert.Equal(t, 2100, n)

	_, err = q.Int("bins", 1, 500, 50)
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_PARAMETER", apiErr.ErrorCode)

	_, err = q.Int("year_min", 2020, 2025, 0)
	assert.Error(t, err)

	_, err = q.Bool("explain", false)
	assert.Error(t, err)

	col, err := q.Enum("column", []string{"Sale Amount", "Assessed Value"}, "Sale Amount")
	require.NoError(t, err)
	assert.Equal(t, "Sale Amount", col)

	assert.Equal(t, []string{"Condo", "Residential", "Apartments"}, q.List("types"))
	assert.Nil(t, q.List("missing"))
}

type predictBody struct {
	AssessedValue *float64 `json:"assessed_value" validate:"required,gte=0"`
	PropertyType  string   `json:"property_type" validate:"notblank"`
}

func TestValidator_DecodeJSON(t *testing.T) {
	v := NewValidator(discardLogger())

	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{"valid", `{"assessed_value":250000,"property_type":"Condo"}`, false, ""},
		{"missing value", `{"property_type":"Condo"}`, true, "assessed_value"},
		{"blank type", `{"assessed_value":1,"property_type":"  "}`, true, "property_type"},
		{"negative", `{"assessed_value":-5,"property_type":"Condo"}`, true, "assessed_value"},
		{"unknown field", `{"assessed_value":1,"property_type":"Condo","town":"X"}`, true, ""},
		{"empty", ``, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/prediction", strings.NewReader(tt.body))
			var dst predictBody
			err := v.DecodeJSON(httptest.NewRecorder(), req, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 250000.0, *dst.AssessedValue)
				return
			}
			require.Error(t, err)
			if tt.field != "" {
				var apiErr *apierrors.APIError
				require.True(t, errors.As(err, &apiErr))
				fields, ok := apiErr.Details.([]apierrors.ValidationError)
				require.True(t, ok)
				assert.Equal(t, tt.field, fields[0].Field)
			}
		})
	}
}

func TestValidator_BodyTooLarge(t *testing.T) {
	v := NewValidator(discardLogger())
	body := `{"property_type":"` + strings.Repeat("x", DefaultMaxBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/prediction", strings.NewReader(body))

	err := v.DecodeJSON(httptest.NewRecorder(), req, &predictBody{})
	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(err, &tooLarge))
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("application/json")(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/prediction", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/prediction", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOTelMiddleware_RecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	var fromCtx *infrastructure.BusinessMetrics
	handler := NewOTelMiddleware(providers, metrics).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetBusinessMetricsFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/eda/overview", nil))
	assert.Same(t, metrics, fromCtx)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `status_code="201"`)
}

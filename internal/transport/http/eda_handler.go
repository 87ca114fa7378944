package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/exporter"
	appmiddleware "github.com/IsnaAyustin/final-project-ds/internal/middleware"
	api "github.com/IsnaAyustin/final-project-ds/pkg/contracts/api/v1"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

type edaContextKey struct{}

// columnParams maps the column query parameter to dataset columns
var columnParams = map[string]string{
	"sale_amount":    domain.ColumnSaleAmount,
	"assessed_value": domain.ColumnAssessedValue,
}

// EDAHandler serves the exploratory analysis views of the dashboard
type EDAHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewEDAHandler creates a new EDA handler
func NewEDAHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *EDAHandler {
	return &EDAHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "eda")),
		errorHandler: errorHandler,
	}
}

// Routes returns the EDA routes
func (h *EDAHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/overview", h.GetOverview)
		r.Get("/preview", h.GetPreview)

		r.Group(func(r chi.Router) {
			r.Use(h.QueryCtx)
			r.Get("/yearly", h.GetYearly)
			r.Get("/by-type", h.GetByType)
			r.Get("/sales-ratio", h.GetSalesRatio)
			r.Get("/distribution", h.GetDistribution)
			r.Get("/box-by-year", h.GetBoxByYear)
			r.Get("/trend", h.GetTrend)
		})
	})

	r.With(h.QueryCtx).Get("/export.{format}", h.Export)

	return r
}

// QueryCtx parses the filter query string into the request context
func (h *EDAHandler) QueryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := parseEDAQuery(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), edaContextKey{}, q)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseEDAQuery(r *http.Request) (api.EDAQuery, error) {
	params := appmiddleware.NewQueryParams(r)
	var q api.EDAQuery
	var err error

	if q.YearMin, err = params.Int("year_min", 0, 9999, 0); err != nil {
		return q, err
	}
	if q.YearMax, err = params.Int("year_max", 0, 9999, 0); err != nil {
		return q, err
	}
	if q.YearMin != 0 && q.YearMax != 0 && q.YearMin > q.YearMax {
		return q, apierrors.InvalidParameter("year_min", fmt.Errorf("year_min %d is after year_max %d", q.YearMin, q.YearMax))
	}

	q.TypesSet = r.URL.Query().Has("types")
	q.PropertyTypes = params.List("types")

	allowed := make([]string, 0, len(columnParams))
	for k := range columnParams {
		allowed = append(allowed, k)
	}
	sort.Strings(allowed)
	column, err := params.Enum("column", allowed, "")
	if err != nil {
		return q, err
	}
	q.Column = columnParams[column]

	if q.Bins, err = params.Int("bins", 0, config.MaxHistogramBins, 0); err != nil {
		return q, err
	}
	return q, nil
}

func queryFromContext(ctx context.Context) api.EDAQuery {
	q, _ := ctx.Value(edaContextKey{}).(api.EDAQuery)
	return q
}

// GetOverview handles GET /api/eda/overview
func (h *EDAHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Overview(r.Context()))
}

// GetPreview handles GET /api/eda/preview
func (h *EDAHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	limit, err := appmiddleware.NewQueryParams(r).Int("limit", 1, config.MaxPreviewRows, 0)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.Preview(r.Context(), limit))
}

// GetYearly handles GET /api/eda/yearly
func (h *EDAHandler) GetYearly(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	var columns []string
	if q.Column != "" {
		columns = []string{q.Column}
	}
	series, err := h.service.YearlyMeans(r.Context(), q.Filter(), columns...)
	h.respond(w, r, series, err)
}

// GetByType handles GET /api/eda/by-type
func (h *EDAHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	stats, err := h.service.TypeStats(r.Context(), q.Filter(), q.Column)
	h.respond(w, r, stats, err)
}

// GetSalesRatio handles GET /api/eda/sales-ratio
func (h *EDAHandler) GetSalesRatio(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	stats, err := h.service.SalesRatioByType(r.Context(), q.Filter())
	h.respond(w, r, stats, err)
}

// GetDistribution handles GET /api/eda/distribution
func (h *EDAHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	bins, err := h.service.Distribution(r.Context(), q.Filter(), q.Column, q.Bins)
	h.respond(w, r, bins, err)
}

// GetBoxByYear handles GET /api/eda/box-by-year
func (h *EDAHandler) GetBoxByYear(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	stats, err := h.service.BoxByYear(r.Context(), q.Filter(), q.Column)
	h.respond(w, r, stats, err)
}

// GetTrend handles GET /api/eda/trend
func (h *EDAHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	q := queryFromContext(r.Context())
	trend, err := h.service.Trend(r.Context(), q.Filter())
	h.respond(w, r, trend, err)
}

// Export handles GET /api/eda/export.csv and /api/eda/export.xlsx
func (h *EDAHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("export format"))
		return
	}

	q := queryFromContext(r.Context())
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, q.Filter(), format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("real_estate_%s%s", time.Now().Format("20060102"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
	}
}

func (h *EDAHandler) respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, v)
}


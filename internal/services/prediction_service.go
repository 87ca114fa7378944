package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
	"github.com/IsnaAyustin/final-project-ds/internal/prediction"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

// Prediction outcomes recorded in metrics
const (
	OutcomeSuccess         = "success"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeInvalid         = "invalid"
	OutcomeError           = "error"
)

// ModelBackend is the loaded model as the service sees it. A backend that
// also implements prediction.Explainer enables attribution.
type ModelBackend interface {
	prediction.Estimator
	Vocabulary(feature string) []string
}

// PredictionService runs predictions against the loaded model
type PredictionService struct {
	model     ModelBackend
	explainer prediction.Explainer
	name      string
	cfg       config.PredictionConfig
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// LoadModel reads the model artifact at path
func LoadModel(ctx context.Context, path string, cfg config.PredictionConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*PredictionService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := prediction.Load(path)
	if err != nil {
		logger.ErrorContext(ctx, "Model load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, apierrors.NewModelError("failed to load model", err).
			WithContext("path", path)
	}

	name := fmt.Sprintf("%s@v%d", m.Name, m.Version)
	logger.InfoContext(ctx, "Model loaded",
		slog.String("path", path),
		slog.String("model", name),
		slog.Int("features", m.Preprocessor.Width()),
		slog.Int("trees", len(m.Regressor.Trees)))

	return NewPredictionService(m, name, cfg, metrics, logger), nil
}

// NewPredictionService wraps a loaded model
func NewPredictionService(model ModelBackend, name string, cfg config.PredictionConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PredictionService{
		model:   model,
		name:    name,
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("component", "prediction_service")),
	}
	if e, ok := model.(prediction.Explainer); ok {
		s.explainer = e
	}
	return s
}

// ModelName returns the name and version of the loaded model
func (s *PredictionService) ModelName() string {
	return s.name
}

// CanExplain reports whether the model supports attribution
func (s *PredictionService) CanExplain() bool {
	return s.explainer != nil
}

// Options returns the form vocabulary and bounds. Category lists come from
// the model when it declares them, otherwise from configuration.
func (s *PredictionService) Options() domain.PredictionOptions {
	return domain.PredictionOptions{
		PropertyTypes:    s.vocabulary(domain.ColumnPropertyType, s.cfg.PropertyTypes),
		ResidentialTypes: s.vocabulary(domain.ColumnResidentialType, s.cfg.ResidentialTypes),
		MinYear:          s.cfg.MinYear,
		MaxYear:          s.cfg.MaxYear,
		MaxAssessedValue: s.cfg.MaxAssessedValue,
		AssessedStep:     s.cfg.AssessedStep,
		DefaultAssessed:  s.cfg.DefaultAssessed,
		DefaultYear:      s.cfg.DefaultYear,
		Model:            s.name,
	}
}

func (s *PredictionService) vocabulary(feature string, fallback []string) []string {
	if v := s.model.Vocabulary(feature); len(v) > 0 {
		return v
	}
	return append([]string(nil), fallback...)
}

// VocabularyMismatches lists configured categories the model was not fit on.
// Requests using them will fail with an unknown category error.
func (s *PredictionService) VocabularyMismatches() []string {
	var out []string
	check := func(feature string, configured []string) {
		known := s.model.Vocabulary(feature)
		if len(known) == 0 {
			return
		}
		allowed := make(map[string]bool, len(known))
		for _, k := range known {
			allowed[k] = true
		}
		for _, c := range configured {
			if !allowed[c] {
				out = append(out, fmt.Sprintf("%s %q is not in the model vocabulary", feature, c))
			}
		}
	}
	check(domain.ColumnPropertyType, s.cfg.PropertyTypes)
	check(domain.ColumnResidentialType, s.cfg.ResidentialTypes)
	return out
}

// CheckBounds rejects inputs outside the ranges the form offers
func (s *PredictionService) CheckBounds(in domain.PredictionInput) error {
	if in.AssessedValue < 0 || in.AssessedValue > s.cfg.MaxAssessedValue {
		return apierrors.InvalidParameter("assessed_value",
			fmt.Errorf("assessed_value must be between 0 and %.0f", s.cfg.MaxAssessedValue))
	}
	if in.Year < s.cfg.MinYear || in.Year > s.cfg.MaxYear {
		return apierrors.InvalidParameter("year",
			fmt.Errorf("year must be between %d and %d", s.cfg.MinYear, s.cfg.MaxYear))
	}
	return nil
}

// Predict estimates the sale price of in. With explain set it also
// attributes the estimate to the input features; a failed attribution
// leaves Attribution nil and adds a warning instead of failing the request.
func (s *PredictionService) Predict(ctx context.Context, in domain.PredictionInput, explain bool) (*domain.PredictionResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "prediction.predict",
		trace.WithAttributes(
			attribute.String("model", s.name),
			attribute.Bool("explain", explain),
		))
	defer span.End()

	price, err := prediction.Predict(s.model, in)
	if err != nil {
		outcome := s.failureOutcome(ctx, err)
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordPrediction(ctx, s.metrics, outcome, false, time.Since(start))
		s.logger.WarnContext(ctx, "Prediction rejected",
			slog.String("outcome", outcome),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := &domain.PredictionResult{
		Input:          in,
		PredictedPrice: price,
		Difference:     price - in.AssessedValue,
		Model:          s.name,
	}

	if explain {
		attr, err := prediction.Explain(s.explainer, s.model, in)
		if err != nil {
			if s.metrics != nil {
				s.metrics.AttributionFailures.Add(ctx, 1)
			}
			s.logger.WarnContext(ctx, "Attribution unavailable",
				slog.String("model", s.name),
				slog.String("error", err.Error()))
			result.Warnings = append(result.Warnings, "Feature attribution is unavailable for this prediction.")
		} else {
			result.Attribution = attr
		}
	}

	infrastructure.RecordPrediction(ctx, s.metrics, OutcomeSuccess, result.Attribution != nil, time.Since(start))
	s.logger.DebugContext(ctx, "Prediction served",
		slog.Float64("predicted_price", price),
		slog.Bool("explained", result.Attribution != nil),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (s *PredictionService) failureOutcome(ctx context.Context, err error) string {
	var unknown *prediction.UnknownCategoryError
	var missing *prediction.MissingFieldError
	switch {
	case errors.As(err, &unknown):
		if s.metrics != nil {
			s.metrics.UnknownCategories.Add(ctx, 1, metric.WithAttributes(attribute.String("feature", unknown.Feature)))
		}
		return OutcomeUnknownCategory
	case errors.As(err, &missing):
		return OutcomeInvalid
	}
	return OutcomeError
}

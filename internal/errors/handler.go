package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
	"github.com/IsnaAyustin/final-project-ds/internal/prediction"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
)

// Domain-specific error types
const (
	TypeUnknownCategory        = "/errors/prediction/unknown-category"
	TypeMissingField           = "/errors/prediction/missing-field"
	TypeAttributionUnavailable = "/errors/prediction/attribution-unavailable"
	TypeModelUnavailable       = "/errors/model/unavailable"
	TypeDatasetUnavailable     = "/errors/dataset/unavailable"
	TypeDatasetSchema          = "/errors/dataset/schema"
	TypeUnknownColumn          = "/errors/eda/unknown-column"
	TypeInsufficientData       = "/errors/eda/insufficient-data"
	TypeWebSocketUpgrade       = "/errors/websocket/upgrade-failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r.URL.Path)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("problem_type", problem.Type),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, instance string) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		)
	}

	var problem *ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, instance)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]ValidationError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
			})
		}
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"One or more fields are invalid",
			instance,
		).WithExtension("errors", fields)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The request body exceeds %d bytes", maxBytes.Limit),
			instance,
		)
	}

	return domainErrorToProblem(err, instance)
}

func domainErrorToProblem(err error, instance string) *ProblemDetails {
	var unknownCategory *prediction.UnknownCategoryError
	var missingField *prediction.MissingFieldError
	var schemaErr *dataprocessing.SchemaError
	var dateErr *dataprocessing.DateParseError
	var insufficient *dataprocessing.InsufficientDataError

	switch {
	case errors.As(err, &unknownCategory):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeUnknownCategory,
			"Unknown Category",
			unknownCategory.Error(),
			instance,
		).WithExtension("feature", unknownCategory.Feature).
			WithExtension("value", unknownCategory.Value).
			WithExtension("allowed", unknownCategory.Allowed)

	case errors.As(err, &missingField):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeMissingField,
			"Missing Field",
			missingField.Error(),
			instance,
		).WithExtension("field", missingField.Field)

	case errors.Is(err, dataprocessing.ErrUnknownColumn):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeUnknownColumn,
			"Unknown Column",
			err.Error(),
			instance,
		)

	case errors.Is(err, dataprocessing.ErrInsufficientPoints):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeInsufficientData,
			"Insufficient Data",
			err.Error(),
			instance,
		)

	case errors.Is(err, prediction.ErrAttributionUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeAttributionUnavailable,
			"Attribution Unavailable",
			"The prediction could not be explained",
			instance,
		)

	case errors.Is(err, ErrModelUnavailable), errors.Is(err, prediction.ErrInvalidArtifact):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeModelUnavailable,
			"Model Unavailable",
			"The prediction model is not loaded",
			instance,
		)

	case errors.Is(err, ErrDatasetUnavailable):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeDatasetUnavailable,
			"Dataset Unavailable",
			"The transactions dataset is not loaded",
			instance,
		)

	case errors.As(err, &schemaErr), errors.As(err, &dateErr), errors.As(err, &insufficient):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDatasetSchema,
			"Dataset Rejected",
			err.Error(),
			instance,
		)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			instance,
		)
	}
}

func apiErrorToProblem(apiErr *APIError, instance string) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "INVALID_PARAMETER":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "WEBSOCKET_UPGRADE_FAILED":
		problemType = TypeWebSocketUpgrade
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		instance,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

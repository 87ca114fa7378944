package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
)

// DefaultMaxBodySize bounds JSON request bodies
const DefaultMaxBodySize = 64 * 1024

// Validator decodes and validates JSON request bodies using struct tags
type Validator struct {
	validate    *validator.Validate
	logger      *slog.Logger
	maxBodySize int64
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("notblank", notBlank)

	return &Validator{
		validate:    v,
		logger:      logger.With(slog.String("component", "validator")),
		maxBodySize: DefaultMaxBodySize,
	}
}

// DecodeJSON reads a bounded JSON body into dst and validates it.
// Unknown fields are rejected.
func (v *Validator) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, v.maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		v.logger.DebugContext(r.Context(), "rejected request body", slog.String("error", err.Error()))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", "Request body is empty")
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	errs := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(errs)
}

// ContentTypeValidator ensures requests with a body declare an allowed content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			render.Status(r, http.StatusUnsupportedMediaType)
			render.JSON(w, r, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// notBlank rejects strings that are empty after trimming
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// QueryParams parses and range-checks query parameters. Each getter returns
// an *apierrors.APIError describing the first bad parameter.
type QueryParams struct {
	r *http.Request
}

// NewQueryParams wraps the request's query string
func NewQueryParams(r *http.Request) QueryParams {
	return QueryParams{r: r}
}

// Int returns the parameter as an int in [min, max], or def when absent
func (q QueryParams) Int(param string, min, max, def int) (int, error) {
	raw := q.r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.InvalidParameter(param, fmt.Errorf("%s must be an integer", param))
	}
	if n < min || n > max {
		return 0, apierrors.InvalidParameter(param, fmt.Errorf("%s must be between %d and %d", param, min, max))
	}
	return n, nil
}

// Bool returns the parameter as a bool, or def when absent
func (q QueryParams) Bool(param string, def bool) (bool, error) {
	raw := q.r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierrors.InvalidParameter(param, fmt.Errorf("%s must be true or false", param))
	}
	return b, nil
}

// Enum returns the parameter if it is one of allowed, or def when absent
func (q QueryParams) Enum(param string, allowed []string, def string) (string, error) {
	raw := q.r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	for _, a := range allowed {
		if raw == a {
			return raw, nil
		}
	}
	return "", apierrors.InvalidParameter(param, fmt.Errorf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
}

// List returns a repeated or comma separated parameter, or nil when absent
func (q QueryParams) List(param string) []string {
	var out []string
	for _, raw := range q.r.URL.Query()[param] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

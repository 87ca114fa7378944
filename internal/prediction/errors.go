package prediction

import (
	"errors"
	"fmt"
)

// ErrAttributionUnavailable marks a failed explanation. The prediction it
// belongs to is still valid.
var ErrAttributionUnavailable = errors.New("attribution unavailable")

// ErrInvalidArtifact is returned when a model file cannot be used
var ErrInvalidArtifact = errors.New("invalid model artifact")

// UnknownCategoryError is returned when a categorical input is outside the
// vocabulary the model was fit on
type UnknownCategoryError struct {
	Feature string
	Value   string
	Allowed []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Feature, e.Value)
}

// MissingFieldError is returned when a prediction input field is empty or not a number
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("prediction input: %s is required", e.Field)
}

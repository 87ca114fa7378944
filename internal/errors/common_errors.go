package errors

import (
	"fmt"
)

// ErrorType classifies application errors
type ErrorType string

const (
	ErrTypeDataset    ErrorType = "DATASET"
	ErrTypeModel      ErrorType = "MODEL"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDatasetError wraps a failure to read or prepare the dataset
func NewDatasetError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataset, message, cause)
}

// NewModelError wraps a failure to load or run the model
func NewModelError(message string, cause error) *AppError {
	return NewAppError(ErrTypeModel, message, cause)
}

// NewExportError wraps a failure to write an export
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

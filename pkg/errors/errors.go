package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents different types of errors
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeRateLimit    ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Server errors (5xx)
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeTimeout  ErrorCode = "TIMEOUT"

	// Crawl errors
	ErrCodeFetchFailed      ErrorCode = "FETCH_FAILED"
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
	ErrCodeParseFailed      ErrorCode = "PARSE_FAILED"

	// Output errors
	ErrCodeExportFailed                 ErrorCode = "EXPORT_FAILED"
	ErrCodeUploadFailed                 ErrorCode = "UPLOAD_FAILED"
	ErrCodeUploadDestinationUnavailable ErrorCode = "UPLOAD_DESTINATION_UNAVAILABLE"
	ErrCodeCredentialsMissing           ErrorCode = "CREDENTIALS_MISSING"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " - " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a later attempt could succeed. Nothing in the
// crawl retries; the flag only informs logs and API clients.
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails adds additional details
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithMetadata adds metadata
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Timestamp:  time.Now(),
		HTTPStatus: getHTTPStatusForCode(code),
		Retryable:  isRetryableCode(code),
	}
}

func getHTTPStatusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeFetchFailed, ErrCodeUnexpectedStatus, ErrCodeUploadFailed, ErrCodeUploadDestinationUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimit, ErrCodeTimeout, ErrCodeFetchFailed, ErrCodeUnexpectedStatus, ErrCodeUploadFailed:
		return true
	default:
		return false
	}
}

// WrapError wraps an existing error with additional context. An empty code
// keeps the code of a wrapped AppError.
func WrapError(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	if code == "" {
		if appErr := GetAppError(err); appErr != nil {
			code = appErr.Code
		} else {
			code = ErrCodeInternal
		}
	}

	wrapped := NewAppError(code, message)
	wrapped.Cause = err
	return wrapped
}

// IsAppError checks if an error chain contains an AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError extracts the first AppError from an error chain
func GetAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.AppError
	}
	return nil
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Fields    []FieldError           `json:"fields,omitempty"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func (e *AppError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:     "error",
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		Timestamp: e.Timestamp,
		Metadata:  e.Metadata,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	*AppError
	Fields []FieldError `json:"fields"`
}

// FieldError represents an error for a specific field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// NewValidationError creates a new validation error
func NewValidationError(message string, fields []FieldError) *ValidationError {
	return &ValidationError{
		AppError: NewAppError(ErrCodeValidation, message),
		Fields:   fields,
	}
}

// Error lists the failing fields after the base message.
func (ve *ValidationError) Error() string {
	msg := ve.AppError.Error()
	for _, f := range ve.Fields {
		msg += fmt.Sprintf("; %s: %s", f.Field, f.Message)
	}
	return msg
}

// AddField adds a field error to the validation error
func (ve *ValidationError) AddField(field, message string, value interface{}) *ValidationError {
	ve.Fields = append(ve.Fields, FieldError{
		Field:   field,
		Message: message,
		Value:   value,
	})
	return ve
}

// HasFields returns true if the validation error has field errors
func (ve *ValidationError) HasFields() bool {
	return len(ve.Fields) > 0
}

// ToErrorResponse includes the field errors.
func (ve *ValidationError) ToErrorResponse() ErrorResponse {
	resp := ve.AppError.ToErrorResponse()
	resp.Fields = ve.Fields
	return resp
}

// Package errors defines the coded errors returned across the service and
// their HTTP envelope.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// ErrorCode is the stable machine-readable identifier of an error
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	CodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"

	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodePersistence        ErrorCode = "PERSISTENCE_ERROR"

	CodeMatchAmbiguous            ErrorCode = "MATCH_AMBIGUOUS"
	CodeClassificationUnavailable ErrorCode = "CLASSIFICATION_UNAVAILABLE"
	CodeMappingMissing            ErrorCode = "MAPPING_MISSING"
	CodeUnknownLocation           ErrorCode = "UNKNOWN_LOCATION"
)

var httpStatus = map[ErrorCode]int{
	CodeBadRequest:                http.StatusBadRequest,
	CodeValidationFailed:          http.StatusBadRequest,
	CodeMappingMissing:            http.StatusBadRequest,
	CodeUnknownLocation:           http.StatusBadRequest,
	CodeNotFound:                  http.StatusNotFound,
	CodeConflict:                  http.StatusConflict,
	CodeSubmissionInFlight:        http.StatusConflict,
	CodeTooManyRequests:           http.StatusTooManyRequests,
	CodeClassificationUnavailable: http.StatusBadGateway,
	CodeServiceUnavailable:        http.StatusServiceUnavailable,
	CodePersistence:               http.StatusServiceUnavailable,
}

// AppError carries a code, a human message, optional details and the
// underlying cause
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`

	pcs []uintptr
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode maps the code to an HTTP status; unknown codes are 500
func (e *AppError) StatusCode() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithMetadata attaches a key/value that is returned to clients
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// WithCause sets the wrapped error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Stack formats the call stack captured when the error was created
func (e *AppError) Stack() string {
	if len(e.pcs) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// MarshalLogObject lets the error be logged with zap.Object
func (e *AppError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("code", string(e.Code))
	enc.AddString("message", e.Message)
	if e.Details != "" {
		enc.AddString("details", e.Details)
	}
	if e.Cause != nil {
		enc.AddString("cause", e.Cause.Error())
	}
	return nil
}

// NewAppError creates an error and records the caller's stack
func NewAppError(code ErrorCode, message, details string) *AppError {
	return newError(code, message, details)
}

func newError(code ErrorCode, message, details string) *AppError {
	pcs := make([]uintptr, 24)
	// Skip runtime.Callers, newError and the exported constructor.
	n := runtime.Callers(3, pcs)
	return &AppError{Code: code, Message: message, Details: details, pcs: pcs[:n]}
}

func NewBadRequestError(message string) *AppError {
	return newError(CodeBadRequest, message, "")
}

func NewValidationError(details string) *AppError {
	return newError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError names the missing resource, e.g. "Location not found"
func NewNotFoundError(resource string) *AppError {
	if resource == "" {
		resource = "Resource"
	}
	return newError(CodeNotFound, resource+" not found", "")
}

func NewConflictError(message string) *AppError {
	return newError(CodeConflict, message, "")
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return newError(CodeInternal, message, "")
}

// NewPersistenceError reports a failed storage read or write
func NewPersistenceError(operation string, cause error) *AppError {
	return newError(CodePersistence, "Storage operation failed", "Failed to "+operation).WithCause(cause)
}

// NewClassificationUnavailableError reports a failed or timed out classifier call
func NewClassificationUnavailableError(service string, cause error) *AppError {
	return newError(CodeClassificationUnavailable, "Classification unavailable",
		"Failed to classify items with "+service).WithCause(cause)
}

// NewMatchAmbiguousError describes an ingredient that could not be resolved
// to a canonical identity
func NewMatchAmbiguousError(name string, cause error) *AppError {
	return newError(CodeMatchAmbiguous, "Ingredient needs manual resolution",
		fmt.Sprintf("Could not match %q to a canonical ingredient", name)).
		WithMetadata("ingredient", name).
		WithCause(cause)
}

// NewSubmissionInFlightError rejects a duplicate submission
func NewSubmissionInFlightError(operation string) *AppError {
	return newError(CodeSubmissionInFlight, "Submission already in progress",
		fmt.Sprintf("A %s for this user is still being processed", operation)).
		WithMetadata("operation", operation)
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// Wrap returns err's AppError unchanged, or an internal error caused by err
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Is reports whether err's chain holds an AppError with the given code
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// GetCode returns the code in err's chain, CodeInternal when there is none
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// ValidationError is one failed field rule
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors joins field failures into one message
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(v))
	for i, fe := range v {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// NewValidationErrors carries every field failure in the metadata
func NewValidationErrors(fieldErrs []ValidationError) *AppError {
	all := ValidationErrors(fieldErrs)
	return newError(CodeValidationFailed, "Validation failed", all.Error()).
		WithMetadata("validation_errors", all)
}

// ErrorResponse is the error envelope written to API clients
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails is the client-visible part of an AppError
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse builds the client envelope for err
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetails{
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Metadata:  err.Metadata,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}
}

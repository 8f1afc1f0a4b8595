package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeConstruction = "CONSTRUCTION_ERROR"
	ErrCodeExecution    = "EXECUTION_ERROR"
	ErrCodeMarshal      = "MARSHAL_ERROR"
	ErrCodeChannel      = "CHANNEL_ERROR"
	ErrCodeDeleted      = "NODE_DELETED"
	ErrCodeValueType    = "UNKNOWN_VALUE_TYPE"
	ErrCodeStaging      = "STAGING_ERROR"
)

// OpGraphError is the structured error type for all opgraph operations.
type OpGraphError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	VarName string         `json:"var_name,omitempty"`
	Cause   error          `json:"-"`
}

func (e *OpGraphError) Error() string {
	if e.VarName != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.VarName, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *OpGraphError) Unwrap() error {
	return e.Cause
}

// NewError creates a new OpGraphError.
func NewError(code, message string) *OpGraphError {
	return &OpGraphError{Code: code, Message: message}
}

// NewErrorf creates a new OpGraphError with a formatted message.
func NewErrorf(code, format string, args ...any) *OpGraphError {
	return &OpGraphError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithVar attaches the DSL variable name the error relates to.
func (e *OpGraphError) WithVar(name string) *OpGraphError {
	e.VarName = name
	return e
}

// WithCause attaches an underlying cause.
func (e *OpGraphError) WithCause(err error) *OpGraphError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *OpGraphError) WithDetails(details map[string]any) *OpGraphError {
	e.Details = details
	return e
}

package typets

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/typets/ir"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	CodeInvalidPlugin     ErrorCode = "invalid_plugin"     // Plugin registration rejected
	CodePluginNotFound    ErrorCode = "plugin_not_found"   // Override target missing
	CodeArity             ErrorCode = "arity"              // Renderer received the wrong number of arguments
	CodePluginFailed      ErrorCode = "plugin_failed"      // Plugin returned an error while rendering
	CodeInvalidDescriptor ErrorCode = "invalid_descriptor" // Descriptor graph is malformed
	CodeInvalidArgument   ErrorCode = "invalid_argument"   // Configuration or options failed validation
	CodeInternal          ErrorCode = "internal"
)

// Error is the standard error envelope.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// WithDetails returns a new Error with the provided map merged into details.
func (e *Error) WithDetails(details map[string]any) *Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: merged,
	}
}

// IsCode reports whether err is, or wraps, an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// AsError maps any error to an *Error. Validation failures from the
// validator package become CodeInvalidArgument with one detail per field;
// document validation errors become CodeInvalidDescriptor; joined errors
// keep the code of their first member; everything else is CodeInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	// Handle multi-errors (errors.Join)
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		errs := u.Unwrap()
		if len(errs) > 0 {
			first := AsError(errs[0])
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return &Error{
				Code:    first.Code,
				Message: strings.Join(msgs, "; "),
				Details: first.Details,
			}
		}
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		details := make(map[string]any)
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			msg := formatValidationError(ve)
			details[ve.Field()] = msg
			messages = append(messages, ve.Field()+": "+msg)
		}
		return NewError(CodeInvalidArgument, strings.Join(messages, "; ")).WithDetails(details)
	}

	var docErr *ir.ValidationError
	if errors.As(err, &docErr) {
		return NewError(CodeInvalidDescriptor, docErr.Message).WithDetail("rule", docErr.Code)
	}

	return NewError(CodeInternal, err.Error())
}

// HTTPStatus maps an ErrorCode to an HTTP status code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeInvalidDescriptor, CodeArity:
		return http.StatusBadRequest
	case CodePluginNotFound:
		return http.StatusNotFound
	case CodeInvalidPlugin:
		return http.StatusUnprocessableEntity
	case CodePluginFailed, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

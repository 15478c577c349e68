package typets

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/broady/typets/ir"
)

func TestNewError(t *testing.T) {
	err := NewError(CodeArity, "dict expects 0 or 2 type arguments")
	if err.Code != CodeArity {
		t.Errorf("expected code %s, got %s", CodeArity, err.Code)
	}
	if err.Message != "dict expects 0 or 2 type arguments" {
		t.Errorf("unexpected message %s", err.Message)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeInvalidPlugin, "plugin %q has no name", "x")
	if err.Message != `plugin "x" has no name` {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorError(t *testing.T) {
	err := NewError(CodeInternal, "something went wrong")
	expected := "internal: something went wrong"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestWithDetail(t *testing.T) {
	base := NewError(CodePluginFailed, "boom")
	withOne := base.WithDetail("plugin", "enum")
	withTwo := withOne.WithDetails(map[string]any{"type": "Color"})

	if base.Details != nil {
		t.Error("WithDetail must not mutate the receiver")
	}
	if withOne.Details["plugin"] != "enum" || len(withOne.Details) != 1 {
		t.Errorf("withOne details = %v", withOne.Details)
	}
	if withTwo.Details["plugin"] != "enum" || withTwo.Details["type"] != "Color" {
		t.Errorf("withTwo details = %v", withTwo.Details)
	}
	if same := withTwo.WithDetails(nil); same != withTwo {
		t.Error("WithDetails(nil) should return the receiver")
	}
}

func TestAsError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "nil error",
			input:    nil,
			wantCode: "",
		},
		{
			name:     "envelope passthrough",
			input:    NewError(CodeArity, "bad arity"),
			wantCode: CodeArity,
			wantMsg:  "bad arity",
		},
		{
			name:     "wrapped envelope",
			input:    fmt.Errorf("alias X: %w", NewError(CodePluginFailed, "boom")),
			wantCode: CodePluginFailed,
			wantMsg:  "boom",
		},
		{
			name:     "document validation error",
			input:    &ir.ValidationError{Code: "duplicate_type", Message: "duplicate type User"},
			wantCode: CodeInvalidDescriptor,
			wantMsg:  "duplicate type User",
		},
		{
			name:     "generic error",
			input:    errors.New("something failed"),
			wantCode: CodeInternal,
			wantMsg:  "something failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AsError(tt.input)
			if tt.input == nil {
				if result != nil {
					t.Errorf("expected nil for nil input, got %v", result)
				}
				return
			}
			if result.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, result.Code)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, result.Message)
			}
		})
	}
}

func TestAsError_ValidationErrors(t *testing.T) {
	type options struct {
		Style  string `validate:"required,oneof=enum union"`
		Indent int    `validate:"gte=0,lte=8"`
	}

	err := validator.New().Struct(options{Indent: 12})
	result := AsError(err)
	if result.Code != CodeInvalidArgument {
		t.Errorf("expected code %s, got %s", CodeInvalidArgument, result.Code)
	}
	if _, ok := result.Details["Style"]; !ok {
		t.Error("expected Style field in details")
	}
	if _, ok := result.Details["Indent"]; !ok {
		t.Error("expected Indent field in details")
	}
	if len(result.Details) != 2 || !strings.Contains(result.Message, "Style: ") {
		t.Errorf("result = %+v", result)
	}
}

func TestAsError_MultiError(t *testing.T) {
	multiErr := errors.Join(
		&ir.ValidationError{Code: "empty_name", Message: "alias definition has no name"},
		errors.New("error 2"),
	)

	result := AsError(multiErr)
	if result.Code != CodeInvalidDescriptor {
		t.Errorf("expected code from first error %s, got %s", CodeInvalidDescriptor, result.Code)
	}
	if result.Message != "alias definition has no name; error 2" {
		t.Errorf("expected combined message, got %q", result.Message)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", arityError(KindRecord, "0 or 2", 1))
	if !IsCode(err, CodeArity) {
		t.Error("IsCode should see through wrapping")
	}
	if IsCode(err, CodeInternal) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), CodeArity) {
		t.Error("plain errors carry no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeInvalidDescriptor, http.StatusBadRequest},
		{CodeArity, http.StatusBadRequest},
		{CodePluginNotFound, http.StatusNotFound},
		{CodeInvalidPlugin, http.StatusUnprocessableEntity},
		{CodePluginFailed, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{ErrorCode("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if status := tt.code.HTTPStatus(); status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

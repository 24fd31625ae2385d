package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "load error type", errType: ErrTypeLoad, expected: "LOAD"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "schema error type", errType: ErrTypeSchema, expected: "SCHEMA"},
		{name: "computation error type", errType: ErrTypeComputation, expected: "COMPUTATION"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeComputation,
				Message: "mean of empty column",
			},
			wantMessage: "[COMPUTATION] mean of empty column",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeLoad,
				Message: "failed to open dataset",
				Cause:   fmt.Errorf("no such file or directory"),
			},
			wantMessage: "[LOAD] failed to open dataset: no such file or directory",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeValidation,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewLoadError("failed to open dataset", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("load monsters: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeLoad, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeSchema, Message: "missing"}
	err.WithContext("column", "kills").WithContext("rows", 3)

	assert.Equal(t, "kills", err.Context["column"])
	assert.Equal(t, 3, err.Context["rows"])
}

func TestNewSchemaError(t *testing.T) {
	cause := errors.New("unknown column: kills")
	err := NewSchemaError("kills", cause)

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Contains(t, err.Error(), `column "kills" not present`)
	assert.Equal(t, "kills", err.Context["column"])
	assert.True(t, errors.Is(err, cause))
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{name: "direct match", err: NewComputationError("std undefined"), errType: ErrTypeComputation, want: true},
		{name: "wrapped match", err: fmt.Errorf("step: %w", NewSchemaError("x", nil)), errType: ErrTypeSchema, want: true},
		{name: "different type", err: NewParsingError("bad row", nil), errType: ErrTypeLoad, want: false},
		{name: "plain error", err: errors.New("boom"), errType: ErrTypeLoad, want: false},
		{name: "nil error", err: nil, errType: ErrTypeLoad, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeNotFound, TypeOf(NewNotFoundError("dataset abc")))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{name: "parsing", err: NewParsingError("ragged row", nil), wantType: ErrTypeParsing},
		{name: "storage", err: NewStorageError("write failed", nil), wantType: ErrTypeStorage},
		{name: "validation", err: NewAppValidationError("threshold must be positive"), wantType: ErrTypeValidation},
		{name: "not found", err: NewNotFoundError("dataset"), wantType: ErrTypeNotFound},
		{name: "config", err: NewConfigError("bad yaml", nil), wantType: ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

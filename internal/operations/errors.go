package operations

import (
	"errors"
	"fmt"

	apperrors "huntstats/internal/errors"
)

// ErrorType represents the type of pipeline error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// OperationError reports which Step of a run failed. The cause keeps
// its application error type so callers can map it with apperrors.TypeOf.
type OperationError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Index   int       `json:"index"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] step %d (%s): %s", e.Type, e.Index, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates an error for a step spec rejected before the run
func NewValidationError(step string, index int, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Index:   index,
		Message: "invalid step",
		Cause:   apperrors.NewAppValidationError(message).WithContext("step", step),
	}
}

// NewExecutionError creates an error for a Step that failed while running
func NewExecutionError(step string, index int, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Index:   index,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError creates an error for a run stopped by its context
func NewCancellationError(step string, index int, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Index:   index,
		Message: "pipeline was cancelled",
		Cause:   cause,
	}
}

// GetErrorType returns the pipeline error type of err, or "" when err
// did not come from a pipeline run
func GetErrorType(err error) ErrorType {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ""
}

// FailedStep returns the id of the Step that produced err
func FailedStep(err error) (string, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Step != "" {
		return opErr.Step, true
	}
	return "", false
}

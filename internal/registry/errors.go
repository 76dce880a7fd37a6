package registry

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies a task handler failure for the caller-facing surface.
type FailureKind int

const (
	// KindNotFound means a required input file, directory or record is absent.
	KindNotFound FailureKind = iota
	// KindInvalidInput means the handler rejected its validated arguments or
	// the data it read.
	KindInvalidInput
	// KindExternalServiceFailure means an upstream service or external
	// process the handler depends on failed.
	KindExternalServiceFailure
	// KindIOFailure means a local read or write failed.
	KindIOFailure
)

// String returns the string representation of FailureKind.
func (k FailureKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindExternalServiceFailure:
		return "external_service_failure"
	case KindIOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

// DuplicateTaskError indicates a task name was registered twice.
type DuplicateTaskError struct {
	Name string
}

// Error implements the error interface for DuplicateTaskError.
func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q is already registered", e.Name)
}

// UnknownTaskError indicates a lookup for a task name that was never registered.
type UnknownTaskError struct {
	Name string
}

// Error implements the error interface for UnknownTaskError.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q", e.Name)
}

// ArgumentError indicates extracted tool arguments failed schema validation.
type ArgumentError struct {
	Task     string   // Task whose schema rejected the arguments
	Problems []string // One entry per violation
}

// Error implements the error interface for ArgumentError.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for task %s: %s", e.Task, strings.Join(e.Problems, "; "))
}

// TaskError represents a failure inside a task handler. It carries a
// machine-readable cause so the caller-facing surface can classify it.
type TaskError struct {
	Task    string      // Task that failed
	Kind    FailureKind // Machine-readable cause
	Message string      // Human-readable error message
	Err     error       // Underlying error (optional)
}

// NewTaskError creates a TaskError for the given task and cause.
func NewTaskError(task string, kind FailureKind, msg string, err error) *TaskError {
	return &TaskError{
		Task:    task,
		Kind:    kind,
		Message: msg,
		Err:     err,
	}
}

// Error implements the error interface for TaskError.
func (e *TaskError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("task %s failed (%s): %s", e.Task, e.Kind, e.Message))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// IsTaskError checks if the error is or wraps a TaskError.
func IsTaskError(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskError
	return errors.As(err, &te)
}

// IsArgumentError checks if the error is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	if err == nil {
		return false
	}
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsUnknownTaskError checks if the error is or wraps an UnknownTaskError.
func IsUnknownTaskError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UnknownTaskError
	return errors.As(err, &ue)
}

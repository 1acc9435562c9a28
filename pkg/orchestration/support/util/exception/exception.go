// Package exception provides the custom error type and error handling
// utilities shared across the Lineup orchestration engine. Errors raised by
// the engine are recoverable by the caller, never process-fatal; the
// retryable flag tells the externally scheduled polling loop whether a
// failed call is worth re-driving on the next tick.
package exception

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// errorRegistry maps sentinel error names to concrete error instances so
// they can be matched by name via errors.Is.
var errorRegistry = make(map[string]error)

// registryMutex protects access to errorRegistry.
var registryMutex sync.RWMutex

// RegisterErrorType registers a sentinel error under a unique name.
// Registered errors are used by IsErrorOfType for classification.
// Panics if name is empty or prototype is nil.
func RegisterErrorType(name string, prototype error) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if name == "" {
		panic("error type name cannot be empty")
	}
	if prototype == nil {
		panic(fmt.Sprintf("cannot register nil prototype for name: %s", name))
	}

	errorRegistry[name] = prototype
}

// IsErrorTypeRegistered reports whether the given error type name is known.
func IsErrorTypeRegistered(name string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, ok := errorRegistry[name]
	return ok
}

// BatchError is the error type raised by the orchestration engine. It
// carries the module where the error occurred, a message, the wrapped
// original error and a flag indicating whether the operation is retryable
// by the scheduler.
type BatchError struct {
	// Module indicates the component where the error occurred
	// (e.g. "batch_manager", "job_manager", "recon", "repository").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isRetryable indicates whether re-driving the operation may succeed.
	isRetryable bool
	// StackTrace is the stack trace captured when the error was created.
	StackTrace string
}

// NewBatchError creates a new BatchError wrapping originalErr.
func NewBatchError(module, message string, originalErr error, isRetryable bool) *BatchError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		StackTrace:  string(buf[:n]),
	}
}

// NewBatchErrorf creates a non-retryable BatchError from a format string.
// If the last argument is an error it becomes the wrapped original error.
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return NewBatchError(module, fmt.Sprintf(format, args...), originalErr, false)
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap / errors.Is.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether the failed operation is retryable.
func (e *BatchError) IsRetryable() bool {
	return e.isRetryable
}

// IsBatchError reports whether err is a *BatchError.
func IsBatchError(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	return errors.As(err, &be)
}

// IsRetryable reports whether an error is worth re-driving. A BatchError's
// flag takes precedence; otherwise common transient failure substrings are
// matched.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.IsRetryable()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF")
}

// IsErrorOfType checks whether err matches a named error. It checks, in
// order: registered sentinel errors via errors.Is, message substrings and
// type names along the unwrap chain.
func IsErrorOfType(err error, errorTypeName string) bool {
	if err == nil {
		return false
	}

	registryMutex.RLock()
	targetError, ok := errorRegistry[errorTypeName]
	registryMutex.RUnlock()

	if ok && errors.Is(err, targetError) {
		return true
	}

	currentErr := err
	for currentErr != nil {
		if strings.Contains(currentErr.Error(), errorTypeName) {
			return true
		}

		errType := reflect.TypeOf(currentErr)
		if errType != nil {
			if errType.String() == errorTypeName || (errType.Kind() == reflect.Ptr && errType.Elem().String() == errorTypeName) {
				return true
			}
		}

		currentErr = errors.Unwrap(currentErr)
	}

	return false
}

// ExtractErrorMessage extracts a concise message from an error. For a
// BatchError it returns the Message field; otherwise the full Error()
// string.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

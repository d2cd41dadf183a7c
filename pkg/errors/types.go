// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import "fmt"

// Kind names the category of an error for classification and exit codes.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindConfig           Kind = "config"
	KindInvalidParameter Kind = "invalid_parameter"
	KindComputation      Kind = "computation"
	KindUnsupported      Kind = "unsupported_operation"
)

// ValidationError represents invalid setup input, such as a malformed
// operation definition or a duplicate registration.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return string(KindValidation) }

// IsRetryable implements ErrorClassifier.
func (e *ValidationError) IsRetryable() bool { return false }

// NotFoundError represents a lookup of something that does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "operation", "job")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrorType implements ErrorClassifier.
func (e *NotFoundError) ErrorType() string { return string(KindNotFound) }

// IsRetryable implements ErrorClassifier.
func (e *NotFoundError) IsRetryable() bool { return false }

// ConfigError represents configuration problems.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "worker.concurrency")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error: %s", e.Reason)
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// InvalidParameterError is returned when the supplied parameters are
// rejected, either by declared parameter validation or by the callable.
type InvalidParameterError struct {
	// Operation is the name of the operation being invoked
	Operation string

	// Param names the offending parameter, if known
	Param string

	// Message is the human-readable error description
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	msg := "invalid parameter"
	if e.Param != "" {
		msg = fmt.Sprintf("invalid parameter %q", e.Param)
	}
	if e.Operation != "" {
		msg = fmt.Sprintf("%s for operation %s", msg, e.Operation)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InvalidParameterError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *InvalidParameterError) ErrorType() string { return string(KindInvalidParameter) }

// IsRetryable implements ErrorClassifier.
func (e *InvalidParameterError) IsRetryable() bool { return false }

// IsUserVisible implements UserVisibleError.
func (e *InvalidParameterError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *InvalidParameterError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *InvalidParameterError) Suggestion() string {
	return "Check the parameters against the operation metadata"
}

// ComputationError is returned when the wrapped callable fails while
// executing. Cause carries the original failure.
type ComputationError struct {
	// Operation is the name of the operation that failed
	Operation string

	// Cause is the error (or recovered panic) raised by the callable
	Cause error
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("computation failed: %v", e.Cause)
	}
	return fmt.Sprintf("operation %s: computation failed: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ComputationError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *ComputationError) ErrorType() string { return string(KindComputation) }

// IsRetryable implements ErrorClassifier. Retrying is left to the caller.
func (e *ComputationError) IsRetryable() bool { return false }

// UnsupportedOperationError signals that an operation deliberately does not
// implement an entry point. It is never an empty success.
type UnsupportedOperationError struct {
	// Operation is the name of the operation
	Operation string

	// Method is the unsupported entry point (e.g., "compute")
	Method string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s does not support %s: use invoke or invoke-async instead", e.Operation, e.Method)
}

// ErrorType implements ErrorClassifier.
func (e *UnsupportedOperationError) ErrorType() string { return string(KindUnsupported) }

// IsRetryable implements ErrorClassifier.
func (e *UnsupportedOperationError) IsRetryable() bool { return false }

// IsUserVisible implements UserVisibleError.
func (e *UnsupportedOperationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *UnsupportedOperationError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *UnsupportedOperationError) Suggestion() string {
	return "Call Invoke or InvokeAsync on the operation"
}

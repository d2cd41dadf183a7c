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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	starfisherrors "github.com/tombee/starfish/pkg/errors"
)

// Exit codes for starfish commands
const (
	ExitSuccess       = 0
	ExitFailed        = 1
	ExitInvalidParams = 2
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for failed invocations
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidParamsError creates an error for unusable parameters or
// unknown operations
func NewInvalidParamsError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidParams,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the process exit code for err. Errors that are not
// ExitErrors are classified by kind: invalid parameters, validation
// failures and unknown operations exit with ExitInvalidParams.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch starfisherrors.KindOf(err) {
	case starfisherrors.KindInvalidParameter, starfisherrors.KindValidation, starfisherrors.KindNotFound:
		return ExitInvalidParams
	}
	return ExitFailed
}

// HandleExitError prints err and exits with the matching code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// PrintError writes err and, when one is available, a suggestion.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err.Error())
	printUserVisibleSuggestion(w, err)
}

// printUserVisibleSuggestion prints the suggestion carried by a
// UserVisibleError or a ValidationError in err's chain.
func printUserVisibleSuggestion(w io.Writer, err error) {
	var suggestion string

	var userErr starfisherrors.UserVisibleError
	var validationErr *starfisherrors.ValidationError
	switch {
	case errors.As(err, &userErr):
		if userErr.IsUserVisible() {
			suggestion = userErr.Suggestion()
		}
	case errors.As(err, &validationErr):
		suggestion = validationErr.Suggestion
	}

	if suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
}

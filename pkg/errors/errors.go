// Error kinds of mldbkit.
//
// There are two kinds of failure:
//
// - ConfigurationError: caller-supplied parameters (or the gateway setup) are invalid.
// It is always detected before any remote call.
//
// - RemoteOperationError: the gateway answered, but not with the expected status.
// It carries the raw response body.
//
// Both match their sentinel with errors.Is:
//
// ```
// if errors.Is(err, xe.ErrConfiguration) { ... }
// ```
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConfiguration = errors.New("configuration error")
var ErrRemoteOperation = errors.New("remote operation error")

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError with formatted reason.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

type RemoteOperationError struct {
	// short description of what has failed
	Message string

	// status code of the response. 0 if unknown.
	StatusCode int

	// raw response body
	Body []byte
}

func (e *RemoteOperationError) Error() string {
	lines := []string{fmt.Sprintf("%s: %s", ErrRemoteOperation.Error(), e.Message)}
	if e.StatusCode != 0 {
		lines[0] += fmt.Sprintf(" (status code = %d)", e.StatusCode)
	}
	if len(e.Body) != 0 {
		lines = append(lines, string(e.Body))
	}
	return strings.Join(lines, "\n")
}

func (e *RemoteOperationError) Is(target error) bool {
	return target == ErrRemoteOperation
}

func NewRemoteOperationError(message string, statusCode int, body []byte) error {
	return &RemoteOperationError{Message: message, StatusCode: statusCode, Body: body}
}

// IncompleteSplitError tells that a multi-step operation stopped halfway.
//
// Created lists the datasets which have been created before the failure.
// They are left as they are.
type IncompleteSplitError struct {
	Created []string
	Err     error
}

func (e *IncompleteSplitError) Error() string {
	return fmt.Sprintf(
		"operation is incomplete (already created: %s): %s",
		strings.Join(e.Created, ", "), e.Err.Error(),
	)
}

func (e *IncompleteSplitError) Unwrap() error {
	return e.Err
}

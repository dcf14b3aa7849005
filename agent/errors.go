package agent

import "fmt"

// MalformedResponseError reports a model reply that could not be parsed
// into the expected JSON structure. Raw carries the offending text so it
// can be logged and surfaced for debugging.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ExecutionError reports generated code that failed validation or
// execution in the sandbox.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("code execution failed: %s", e.Message)
}

// ConfigurationError reports an invalid request parameter detected before
// any model call is made.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

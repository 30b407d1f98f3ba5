package util

import "fmt"

// ErrorType classifies mockwire errors.
type ErrorType string

const (
	// ConfigurationError represents fatal construction-time failures,
	// e.g. no real transport available to fall through to.
	ConfigurationError ErrorType = "configuration error"
	// ValidationError represents invalid endpoint definitions.
	ValidationError ErrorType = "validation error"
	// ScriptError represents JavaScript handler failures.
	ScriptError ErrorType = "script error"
	// MissingResourceError represents lookups of endpoints that were
	// never registered.
	MissingResourceError ErrorType = "missing resource error"
)

// MockwireError is a typed error carrying the offending source value.
type MockwireError struct {
	Type    ErrorType
	Message string
	Source  interface{}
}

// Error implements the error interface.
func (e *MockwireError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(message string) *MockwireError {
	return &MockwireError{
		Type:    ConfigurationError,
		Message: message,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, source interface{}) *MockwireError {
	return &MockwireError{
		Type:    ValidationError,
		Message: message,
		Source:  source,
	}
}

// NewScriptError creates a new script error.
func NewScriptError(message string, source interface{}) *MockwireError {
	return &MockwireError{
		Type:    ScriptError,
		Message: message,
		Source:  source,
	}
}

// NewMissingResourceError creates a new missing resource error.
func NewMissingResourceError(message string, source interface{}) *MockwireError {
	return &MockwireError{
		Type:    MissingResourceError,
		Message: message,
		Source:  source,
	}
}

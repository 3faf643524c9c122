package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidConfig matches every error returned by the config validation helpers.
var ErrInvalidConfig = errors.New("invalid config")

// ConfigValidationError locates a validation failure within a config. Field is empty when the
// failure is not about a single field.
type ConfigValidationError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("error validating %q: %v", e.Path, e.Err)
}

func (e *ConfigValidationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any validation error.
func (e *ConfigValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigValidationError returns a config validation error occurring at a given path.
func NewConfigValidationError(path string, err error) error {
	return &ConfigValidationError{Path: path, Err: err}
}

// NewConfigValidationFieldRequiredError is used when a config field is required but not present.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return &ConfigValidationError{Path: path, Field: field, Err: errors.Errorf("%q is required", field)}
}

// NewConfigValidationInvalidFieldError is used when a config field is present but out of range.
func NewConfigValidationInvalidFieldError(path, field string, value interface{}) error {
	return &ConfigValidationError{Path: path, Field: field, Err: errors.Errorf("%q has invalid value %v", field, value)}
}

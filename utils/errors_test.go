package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("testimage", "width")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "testimage": "width" is required`)
	test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)

	err = errors.Wrap(NewConfigValidationInvalidFieldError("testimage.sizes.1", "height", -3), "generate")
	test.That(t, err.Error(), test.ShouldEqual, `generate: error validating "testimage.sizes.1": "height" has invalid value -3`)
	var validationErr *ConfigValidationError
	test.That(t, errors.As(err, &validationErr), test.ShouldBeTrue)
	test.That(t, validationErr.Path, test.ShouldEqual, "testimage.sizes.1")
	test.That(t, validationErr.Field, test.ShouldEqual, "height")

	cause := errors.New("boom")
	err = NewConfigValidationError("path", cause)
	test.That(t, errors.Is(err, cause), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)
	test.That(t, errors.Is(cause, ErrInvalidConfig), test.ShouldBeFalse)
}

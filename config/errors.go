package config

import (
	"github.com/pkg/errors"
)

// NewConfigValidationError returns an error specifying that there was an error while validating the
// config at the given path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError returns an error specifying that a required field was missing
// from the config at the given path.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}

package config

import "errors"

var (
	// ErrMalformed is returned for any defect in the coverage configuration:
	// an unreadable file, content outside of a section, a missing required
	// section or key, or a scalar that cannot be converted to its type.
	ErrMalformed = errors.New("malformed coverage configuration")
)

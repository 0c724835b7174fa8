package report

import "errors"

var (
	// ErrInvalidPrecision is returned when the requested number of decimal digits is negative.
	ErrInvalidPrecision = errors.New("precision must be a non-negative integer")
	// ErrNoData is returned when no measured statements remain after applying the omit patterns.
	ErrNoData = errors.New("no coverage data to report")
	// ErrUnknownFormat is returned when an encoder is requested for an unsupported format name.
	ErrUnknownFormat = errors.New("unknown report format")
)

package cycle

import "errors"

// Common errors returned by the cycle package.
var (
	// ErrInvalidMonth is returned when a month string does not parse as YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month: must be formatted YYYY-MM")

	// ErrInvalidDateRange is returned when a range is empty or inverted
	// after cutoff adjustment.
	ErrInvalidDateRange = errors.New("invalid date range: start must precede end")
)

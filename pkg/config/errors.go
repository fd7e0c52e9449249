package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrNoExportDirs is returned when no export directories are specified.
	ErrNoExportDirs = errors.New("no invoice export directories specified")

	// ErrInvalidBillingZone is returned when the billing zone is empty.
	ErrInvalidBillingZone = errors.New("invalid billing zone: must be an IANA zone name")

	// ErrInvalidMonthCount is returned when the reporting month count is <= 0.
	ErrInvalidMonthCount = errors.New("invalid month count: must be > 0")

	// ErrInvalidWatchInterval is returned when watch interval is <= 0.
	ErrInvalidWatchInterval = errors.New("invalid watch interval: must be > 0")

	// ErrInvalidDebounceWindow is returned when debounce window is <= 0.
	ErrInvalidDebounceWindow = errors.New("invalid debounce window: must be > 0")

	// ErrInvalidRefreshRate is returned when refresh rate is <= 0.
	ErrInvalidRefreshRate = errors.New("invalid refresh rate: must be > 0")

	// ErrInvalidDisplayFormat is returned when display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or csv")

	// ErrInvalidMaxWidth is returned when max width is negative.
	ErrInvalidMaxWidth = errors.New("invalid max width: must be >= 0")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)

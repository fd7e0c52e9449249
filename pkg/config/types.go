// Package config provides configuration management for
// invoice-analyzer.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Export dirs: %v\n", cfg.ExportDirs)
package config

import (
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - ExportDirs must have at least one directory
// - Billing.Zone must be a valid IANA zone name
// - WatchInterval must be > 0
// - DebounceWindow must be > 0
// - RefreshRate must be > 0.
type Config struct {
	// Invoice export directories to scan and watch
	ExportDirs []string `yaml:"export_dirs"`

	// Billing calendar settings
	Billing BillingConfig `yaml:"billing"`

	// Watch-mode settings
	Watch WatchConfig `yaml:"watch"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// BillingConfig contains billing calendar settings.
type BillingConfig struct {
	// IANA zone name the provider stamps invoices in
	Zone string `yaml:"zone"`

	// Number of trailing full invoice months to report on
	Months int `yaml:"months"`
}

// WatchConfig contains watch-mode settings.
type WatchConfig struct {
	// Fallback polling interval when filesystem events are unavailable
	WatchInterval time.Duration `yaml:"watch_interval"`

	// Quiet period before reprocessing after a burst of file events
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// How often refreshed report views are re-rendered
	RefreshRate time.Duration `yaml:"refresh_rate"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Default output format (table, json, csv)
	Format string `yaml:"format"`

	// Maximum rendered table width, 0 to detect the terminal
	MaxWidth int `yaml:"max_width"`

	// Compact output (less whitespace)
	Compact bool `yaml:"compact"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the volume lookup database file
	VolumesDBPath string `yaml:"volumes_db_path"`

	// Path to the reader position database file
	PositionsDBPath string `yaml:"positions_db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Returns an error if any invariant is violated:
//   - No export directories specified
//   - Invalid billing zone or month count
//   - Invalid time durations (must be > 0)
//   - Invalid display format
//   - Invalid log level
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	if len(c.ExportDirs) == 0 {
		return ErrNoExportDirs
	}

	// Validate billing config
	if c.Billing.Zone == "" {
		return ErrInvalidBillingZone
	}
	if c.Billing.Months <= 0 {
		return ErrInvalidMonthCount
	}

	// Validate watch config
	if c.Watch.WatchInterval <= 0 {
		return ErrInvalidWatchInterval
	}
	if c.Watch.DebounceWindow <= 0 {
		return ErrInvalidDebounceWindow
	}
	if c.Watch.RefreshRate <= 0 {
		return ErrInvalidRefreshRate
	}

	// Validate display config
	validFormats := map[string]bool{
		"table": true,
		"json":  true,
		"csv":   true,
	}
	if !validFormats[c.Display.Format] {
		return ErrInvalidDisplayFormat
	}
	if c.Display.MaxWidth < 0 {
		return ErrInvalidMaxWidth
	}

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		ExportDirs: defaultExportDirs(),
		Billing: BillingConfig{
			Zone:   "America/Chicago",
			Months: 3,
		},
		Watch: WatchConfig{
			WatchInterval:  5 * time.Second,
			DebounceWindow: 500 * time.Millisecond,
			RefreshRate:    1 * time.Second,
		},
		Display: DisplayConfig{
			Format:   "table",
			MaxWidth: 0,
			Compact:  false,
		},
		Storage: StorageConfig{
			VolumesDBPath:   defaultVolumesDBPath(),
			PositionsDBPath: defaultPositionsDBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}

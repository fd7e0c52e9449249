package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/invoice-analyzer/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{
		configPath: configPath,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	// Start with default configuration
	cfg := Default()

	// Find config file path
	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	// Load from file if it exists
	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// If file is specified but can't be loaded, return error
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			// Otherwise, just use defaults
		} else {
			cfg = l.mergeConfigs(cfg, fileCfg)
		}
	}

	// Apply environment variable overrides
	cfg = l.applyEnvVars(cfg)

	// Validate final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches for a config file in standard locations.
//
// Searches in order:
// 1. ./config.yaml
// 2. ~/.config/invoice-analyzer/config.yaml
//
// Returns empty string if no config file is found.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		defaultConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func (l *loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	// Merge export directories
	if len(override.ExportDirs) > 0 {
		result.ExportDirs = override.ExportDirs
	}

	// Merge billing config
	if override.Billing.Zone != "" {
		result.Billing.Zone = override.Billing.Zone
	}
	if override.Billing.Months > 0 {
		result.Billing.Months = override.Billing.Months
	}

	// Merge watch config
	if override.Watch.WatchInterval > 0 {
		result.Watch.WatchInterval = override.Watch.WatchInterval
	}
	if override.Watch.DebounceWindow > 0 {
		result.Watch.DebounceWindow = override.Watch.DebounceWindow
	}
	if override.Watch.RefreshRate > 0 {
		result.Watch.RefreshRate = override.Watch.RefreshRate
	}

	// Merge display config
	if override.Display.Format != "" {
		result.Display.Format = override.Display.Format
	}
	if override.Display.MaxWidth > 0 {
		result.Display.MaxWidth = override.Display.MaxWidth
	}
	// Compact is a bool, so we always take the override value
	result.Display.Compact = override.Display.Compact

	// Merge storage config
	if override.Storage.VolumesDBPath != "" {
		result.Storage.VolumesDBPath = override.Storage.VolumesDBPath
	}
	if override.Storage.PositionsDBPath != "" {
		result.Storage.PositionsDBPath = override.Storage.PositionsDBPath
	}

	// Merge logging config
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - INVOICE_EXPORT_DIR: Comma-separated list of export directories
//   - INVOICE_ANALYZER_ZONE: Billing zone name
//   - INVOICE_ANALYZER_VOLUMES_DB: Path to volume lookup database
//   - INVOICE_ANALYZER_LOG_LEVEL: Log level
func (l *loader) applyEnvVars(cfg *Config) *Config {
	result := *cfg

	// INVOICE_EXPORT_DIR: comma-separated paths
	if envDirs := os.Getenv("INVOICE_EXPORT_DIR"); envDirs != "" {
		dirs := strings.Split(envDirs, ",")
		for i := range dirs {
			dirs[i] = strings.TrimSpace(dirs[i])
		}
		result.ExportDirs = dirs
	}

	// INVOICE_ANALYZER_ZONE: billing zone
	if zone := os.Getenv("INVOICE_ANALYZER_ZONE"); zone != "" {
		result.Billing.Zone = zone
	}

	// INVOICE_ANALYZER_VOLUMES_DB: volume lookup database path
	if dbPath := os.Getenv("INVOICE_ANALYZER_VOLUMES_DB"); dbPath != "" {
		result.Storage.VolumesDBPath = dbPath
	}

	// INVOICE_ANALYZER_LOG_LEVEL: log level
	if logLevel := os.Getenv("INVOICE_ANALYZER_LOG_LEVEL"); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	return &result
}

// Load is a convenience function that creates a loader and loads configuration.
//
// Equivalent to:
//
//	loader := NewLoader("")
//	return loader.Load()
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
)

// defaultExportDirs returns the default invoice export directories.
//
// Searches in order:
// 1. ~/invoices/
// 2. ~/.local/share/invoice-analyzer/exports/
//
// Returns all directories that exist on the filesystem.
func defaultExportDirs() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir not available
		return []string{"."}
	}

	candidates := []string{
		filepath.Join(homeDir, "invoices"),
		filepath.Join(homeDir, ".local", "share", "invoice-analyzer", "exports"),
	}

	var dirs []string
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			dirs = append(dirs, dir)
		}
	}

	// If no directories found, return the first candidate
	// (will be created by the application if needed)
	if len(dirs) == 0 {
		return []string{candidates[0]}
	}

	return dirs
}

// defaultVolumesDBPath returns the default volume lookup database path.
//
// Returns: ~/.config/invoice-analyzer/volumes.db.
func defaultVolumesDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./volumes.db"
	}

	return filepath.Join(homeDir, ".config", "invoice-analyzer", "volumes.db")
}

// defaultPositionsDBPath returns the default reader position database path.
//
// Returns: ~/.config/invoice-analyzer/positions.db.
func defaultPositionsDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./positions.db"
	}

	return filepath.Join(homeDir, ".config", "invoice-analyzer", "positions.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/invoice-analyzer/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "invoice-analyzer", "config.yaml")
}

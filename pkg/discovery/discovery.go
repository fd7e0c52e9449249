// Package discovery provides functionality for discovering invoice
// export files and mapping them to billing accounts.
//
// It scans configured directories for JSONL export files. Exports may
// sit directly in a configured directory or in one account
// subdirectory per billing account.
//
// Example usage:
//
//	d := discovery.New([]string{"~/invoices"}, logger.Default())
//	exports, err := d.Discover()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, export := range exports {
//	    fmt.Printf("Export: %s, Account: %s\n", export.FilePath, export.Account)
//	}
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Logger defines the logging interface used by the discovery package.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ExportFile represents a discovered invoice export JSONL file.
type ExportFile struct {
	// Account is the billing account the export belongs to, taken from
	// the containing subdirectory. Empty for exports placed directly in
	// a configured directory.
	Account string

	// FilePath is the absolute path to the JSONL file.
	FilePath string

	// Dir is the directory containing the export file.
	Dir string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time.
	ModTime int64 // Unix timestamp
}

// Discoverer provides methods for discovering invoice export files.
type Discoverer interface {
	// Discover scans configured directories and returns all export files found.
	//
	// Returns:
	//   - Slice of discovered export files
	//   - Error if directories cannot be accessed
	//
	// Skips files that are not JSONL exports.
	Discover() ([]ExportFile, error)

	// DiscoverDir returns export files for a specific directory.
	//
	// Parameters:
	//   - dir: Absolute or relative path to an export directory
	//
	// Returns:
	//   - Slice of export files in the directory
	//   - Error if directory cannot be accessed
	DiscoverDir(dir string) ([]ExportFile, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	baseDirs []string // export directories to scan
	logger   Logger
}

// New creates a new Discoverer instance.
//
// Parameters:
//   - baseDirs: List of export directories to scan (e.g., ~/invoices)
//   - logger: Logger instance for diagnostic messages
//
// Returns a configured Discoverer.
func New(baseDirs []string, logger Logger) Discoverer {
	return &discoverer{
		baseDirs: baseDirs,
		logger:   logger,
	}
}

// Discover implements Discoverer.Discover.
func (d *discoverer) Discover() ([]ExportFile, error) {
	var allExports []ExportFile

	for _, baseDir := range d.baseDirs {
		// Expand home directory if present
		expandedDir := expandHome(baseDir)

		// Check if directory exists
		if _, err := os.Stat(expandedDir); err != nil {
			if os.IsNotExist(err) {
				d.logger.Warn("directory not found, skipping", "path", expandedDir)
				continue
			}
			return nil, fmt.Errorf("failed to stat directory %s: %w", expandedDir, err)
		}

		// Scan directory and its account subdirectories
		exports, err := d.scanBaseDirectory(expandedDir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", expandedDir, err)
		}

		allExports = append(allExports, exports...)
	}

	d.logger.Info("discovery complete", "total_exports", len(allExports))
	return allExports, nil
}

// DiscoverDir implements Discoverer.DiscoverDir.
func (d *discoverer) DiscoverDir(dir string) ([]ExportFile, error) {
	expandedPath := expandHome(dir)

	// Check if directory exists
	if _, err := os.Stat(expandedPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, expandedPath)
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", expandedPath, err)
	}

	return d.scanExportDirectory(expandedPath, accountFromDir(expandedPath))
}

// scanBaseDirectory scans a base directory for export files and
// account subdirectories.
//
// Layout: basedir/*.jsonl plus basedir/account/*.jsonl.
func (d *discoverer) scanBaseDirectory(baseDir string) ([]ExportFile, error) {
	// Exports placed directly in the base directory have no account.
	exports, err := d.scanExportDirectory(baseDir, "")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		accountDir := filepath.Join(baseDir, entry.Name())
		accountExports, err := d.scanExportDirectory(accountDir, entry.Name())
		if err != nil {
			d.logger.Warn("failed to scan account directory",
				"path", accountDir,
				"error", err)
			continue
		}

		exports = append(exports, accountExports...)
	}

	return exports, nil
}

// scanExportDirectory scans one directory for export JSONL files.
func (d *discoverer) scanExportDirectory(dir, account string) ([]ExportFile, error) {
	exports := make([]ExportFile, 0, 10) // Pre-allocate with reasonable capacity

	// Read all files in the directory
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Check if file matches the export pattern (*.jsonl)
		if !isExportFile(entry.Name()) {
			d.logger.Debug("skipping non-export file",
				"file", entry.Name())
			continue
		}

		// Get file info
		filePath := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			d.logger.Warn("failed to get file info",
				"path", filePath,
				"error", err)
			continue
		}

		exports = append(exports, ExportFile{
			Account:  account,
			FilePath: filePath,
			Dir:      dir,
			Size:     info.Size(),
			ModTime:  info.ModTime().Unix(),
		})
	}

	d.logger.Debug("scanned export directory",
		"path", dir,
		"exports_found", len(exports))

	return exports, nil
}

// isExportFile reports whether a filename looks like an invoice export.
//
// Exports are JSONL files; hidden files and editor temp files are
// skipped.
func isExportFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, ".jsonl")
}

// accountFromDir derives an account label from a directory path.
func accountFromDir(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}

package billing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

const (
	// MaxFileSize is the maximum allowed export file size (200MB).
	// Files larger than this will be rejected to prevent memory exhaustion.
	MaxFileSize = 200 * 1024 * 1024

	// MaxLineLength is the maximum allowed line length (8MB). A single
	// line holds a whole invoice document, children included.
	MaxLineLength = 8 * 1024 * 1024
)

// Parser provides methods for parsing invoice export JSONL files.
type Parser interface {
	// ParseFile reads an export file from the given offset and returns
	// the parsed invoices along with the new file offset.
	//
	// Parameters:
	//   - path: Path to the JSONL export file
	//   - offset: Byte offset to start reading from (0 for beginning)
	//
	// Returns:
	//   - Slice of successfully parsed invoices
	//   - New offset position after reading
	//   - Error if file cannot be read or is too large
	//
	// Malformed lines are logged and skipped rather than causing failure.
	// Zero-amount invoices are skipped as well. The returned offset can
	// be used for incremental reading.
	//
	// Thread-safety: This method is safe to call concurrently with different files.
	ParseFile(path string, offset int64) ([]Invoice, int64, error)

	// ParseLine parses a single JSONL line into an Invoice.
	//
	// Parameters:
	//   - line: A single line of JSONL (without newline character)
	//
	// Returns:
	//   - Parsed Invoice
	//   - Error if line is not valid JSON or fails validation
	//
	// Thread-safety: This method is thread-safe.
	ParseLine(line string) (*Invoice, error)
}

// jsonlParser implements the Parser interface.
type jsonlParser struct {
	log logger.Logger
}

// New creates a new Parser instance. A nil log disables diagnostics.
func New(log logger.Logger) Parser {
	if log == nil {
		log = logger.Noop()
	}
	return &jsonlParser{log: log}
}

// ParseFile implements Parser.ParseFile.
func (p *jsonlParser) ParseFile(path string, offset int64) ([]Invoice, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() > MaxFileSize {
		return nil, 0, fmt.Errorf("%w: size=%d, max=%d",
			ErrFileTooLarge, info.Size(), MaxFileSize)
	}

	// #nosec G304: path is validated by caller
	f, err := os.Open(path) // nolint:gosec
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			p.log.Warn("failed to close export file", "path", path, "error", closeErr)
		}
	}()

	// Seek to offset for incremental reading
	if offset > 0 {
		if _, seekErr := f.Seek(offset, io.SeekStart); seekErr != nil {
			return nil, 0, fmt.Errorf("failed to seek to offset %d: %w", offset, seekErr)
		}
	}

	invoices := make([]Invoice, 0, 16)
	scanner := bufio.NewScanner(f)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxLineLength)

	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		inv, parseErr := p.ParseLine(line)
		if parseErr != nil {
			p.log.Warn("skipping malformed export line",
				"path", path, "line", lineNum, "error", parseErr)
			continue
		}

		if inv.IsZeroAmount() {
			p.log.Debug("skipping zero-amount invoice",
				"path", path, "invoice_id", inv.ID)
			continue
		}

		invoices = append(invoices, *inv)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return invoices, 0, fmt.Errorf("scanner error at line %d: %w", lineNum, scanErr)
	}

	newOffset, seekErr := f.Seek(0, io.SeekCurrent)
	if seekErr != nil {
		// If we can't get offset, return file size
		newOffset = info.Size()
	}

	return invoices, newOffset, nil
}

// ParseLine implements Parser.ParseLine.
func (p *jsonlParser) ParseLine(line string) (*Invoice, error) {
	if line == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedJSON)
	}

	var inv Invoice
	if err := json.Unmarshal([]byte(line), &inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &inv, nil
}

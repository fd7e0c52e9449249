// Package reader provides incremental export reading with position
// tracking.
//
// It reads invoice export files from the last known position and
// persists offsets to handle re-exports and application restarts.
//
// Example usage:
//
//	r, err := reader.New(reader.Config{
//	    PositionStore: store,
//	    Parser:        billing.New(log),
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	invoices, err := r.Read(ctx, "/data/invoices/2022-06.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, invoice := range invoices {
//	    fmt.Printf("Invoice %d: %s\n", invoice.ID, invoice.TypeCode)
//	}
package reader

import (
	"context"
	"time"

	"github.com/mjholt/invoice-analyzer/pkg/billing"
)

// PositionStore provides persistence for file read positions.
type PositionStore interface {
	// GetPosition retrieves the last read position for a file.
	//
	// Parameters:
	//   - path: Absolute file path
	//
	// Returns:
	//   - Last read offset in bytes
	//   - Error if retrieval fails
	//
	// Returns 0 if no position is stored (start from beginning).
	GetPosition(path string) (int64, error)

	// SetPosition stores the read position for a file.
	//
	// Parameters:
	//   - path: Absolute file path
	//   - offset: Current read offset in bytes
	//
	// Returns error if storage fails.
	SetPosition(path string, offset int64) error
}

// Reader provides incremental export reading.
type Reader interface {
	// Read reads new invoices from a file since the last read position.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - path: Absolute path to JSONL export file
	//
	// Returns:
	//   - Slice of new invoices
	//   - Error if reading fails
	//
	// Automatically updates the stored position after successful read.
	Read(ctx context.Context, path string) ([]billing.Invoice, error)

	// ReadFrom reads invoices from a specific offset.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - path: Absolute path to JSONL export file
	//   - offset: Starting offset in bytes
	//
	// Returns:
	//   - Slice of invoices
	//   - New offset after reading
	//   - Error if reading fails
	//
	// Does not update the stored position.
	ReadFrom(ctx context.Context, path string, offset int64) ([]billing.Invoice, int64, error)

	// Reset resets the read position for a file to the beginning.
	//
	// Parameters:
	//   - path: Absolute file path
	//
	// Returns error if reset fails.
	Reset(path string) error

	// Close closes the reader and releases resources.
	//
	// Returns error if cleanup fails.
	Close() error
}

// Config contains reader configuration.
type Config struct {
	// PositionStore persists file read positions.
	PositionStore PositionStore

	// Parser parses JSONL export entries.
	Parser billing.Parser

	// MaxRetries is the maximum number of retry attempts for transient errors.
	// Default: 3.
	MaxRetries int

	// RetryDelay is the base delay between retry attempts.
	// Uses exponential backoff: delay * 2^attempt.
	// Default: 100ms.
	RetryDelay time.Duration

	// FileOpenTimeout is the maximum time to wait for file access.
	// Default: 5s.
	FileOpenTimeout time.Duration

	// MaxFileSize is the maximum file size to read (safety limit).
	// Default: 200MB.
	MaxFileSize int64
}

// Package monitor provides the live reporting mode: it watches export
// directories, reads newly appended invoice documents incrementally,
// re-runs normalization and reconciliation over the accumulated rows,
// and emits refreshed summaries on a configurable interval.
package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
)

// Config holds the configuration for the live monitor.
type Config struct {
	// ExportDirs are the export directories to watch.
	ExportDirs []string

	// Accounts restricts monitoring to the named billing accounts
	// (empty means all accounts).
	Accounts []string

	// RefreshInterval is the interval between summary updates.
	// Default: 1s.
	RefreshInterval time.Duration
}

// Summary is a point-in-time view of the accumulated billing data.
type Summary struct {
	// Invoices is the number of invoice documents processed.
	Invoices int

	// Rows is the number of normalized rows after reconciliation.
	Rows int

	// Months are the invoice months seen, sorted ascending.
	Months []string

	// MonthTotals are per-month totals by invoice type.
	MonthTotals []aggregator.MonthTotal

	// Categories are per-category recurring charges by invoice month.
	Categories []aggregator.CategorySummary
}

// Update represents a live monitoring update event.
type Update struct {
	// Timestamp of the update.
	Timestamp time.Time

	// Summary contains the current aggregated views.
	Summary Summary

	// Delta contains the change since the last update.
	Delta DeltaStats
}

// DeltaStats represents changes since the last update.
type DeltaStats struct {
	// NewInvoices is the number of invoice documents added.
	NewInvoices int

	// NewRows is the number of normalized rows added.
	NewRows int

	// Recurring is the recurring charge added across all months.
	Recurring decimal.Decimal
}

// LiveMonitor provides real-time invoice export monitoring.
type LiveMonitor interface {
	// Start discovers export files, performs the initial read, and
	// begins watching for changes.
	Start() error

	// Stop stops the monitor gracefully.
	Stop() error

	// Summary returns the current aggregated views.
	Summary() Summary

	// Updates returns the channel for receiving live updates.
	Updates() <-chan Update

	// Close closes the monitor and releases resources.
	Close() error
}

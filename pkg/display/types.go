// Package display provides output formatting for invoice report
// views.
//
// It supports multiple output formats (table, JSON, CSV) and renders
// the aggregator's month totals, category and product summaries, and
// largest-item views.
package display

import (
	"io"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays report views as formatted tables.
	FormatTable Format = "table"

	// FormatJSON displays report views as JSON.
	FormatJSON Format = "json"

	// FormatCSV displays report views as comma-separated values.
	FormatCSV Format = "csv"
)

// Formatter formats and displays invoice report views.
type Formatter interface {
	// FormatMonthTotals formats per-month invoice totals by type.
	//
	// Parameters:
	//   - w: Output writer
	//   - totals: Month totals to format
	//
	// Returns error if formatting fails.
	FormatMonthTotals(w io.Writer, totals []aggregator.MonthTotal) error

	// FormatCategorySummaries formats per-category recurring charges
	// with one column per invoice month.
	//
	// Parameters:
	//   - w: Output writer
	//   - summaries: Category summaries to format
	//   - months: Invoice months to use as columns, in display order
	//
	// Returns error if formatting fails.
	FormatCategorySummaries(w io.Writer, summaries []aggregator.CategorySummary, months []string) error

	// FormatProductSummaries formats per-product child charges with
	// one column per invoice month.
	//
	// Parameters:
	//   - w: Output writer
	//   - summaries: Product summaries to format
	//   - months: Invoice months to use as columns, in display order
	//
	// Returns error if formatting fails.
	FormatProductSummaries(w io.Writer, summaries []aggregator.ProductSummary, months []string) error

	// FormatTopParents formats the largest top-level charges.
	//
	// Parameters:
	//   - w: Output writer
	//   - parents: Parent charges to format, largest first
	//
	// Returns error if formatting fails.
	FormatTopParents(w io.Writer, parents []aggregator.ParentCharge) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// MaxWidth caps the rendered table width in columns. Zero means
	// detect the terminal width, falling back to defaultWidth when
	// output is not a terminal.
	MaxWidth int

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool
}

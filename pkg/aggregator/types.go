// Package aggregator provides pivot views over normalized billing
// rows: per-month totals by invoice type, category summaries with
// invoice-month columns, and product-code summaries of child charges.
//
// Views are pure consumers of the row schema; rows are never modified
// and the aggregator holds no reference to the caller's slice.
//
// Example usage:
//
//	agg := aggregator.New()
//	agg.AddRows(rows)
//	for _, total := range agg.MonthTotals() {
//	    fmt.Printf("%s %s %s\n", total.Month, total.Type, total.Recurring)
//	}
package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/normalizer"
)

// MonthTotal is one invoice month's charges for one invoice type,
// summed over Parent rows.
type MonthTotal struct {
	// Month is the canonical YYYY-MM invoice month.
	Month string

	// Type is the provider invoice type code.
	Type string

	// Items is the number of Parent rows contributing.
	Items int

	// Recurring is the summed recurring charge.
	Recurring decimal.Decimal

	// OneTime is the summed one-time amount.
	OneTime decimal.Decimal
}

// CategorySummary is the recurring charge of one (category group,
// category) pair broken out by invoice month.
type CategorySummary struct {
	CategoryGroup string
	Category      string

	// ByMonth maps invoice months to summed recurring charges.
	ByMonth map[string]decimal.Decimal

	// Total is the sum across all months.
	Total decimal.Decimal
}

// ProductSummary is the child charge of one provider product code
// broken out by invoice month. Child rows without a product code are
// grouped under an empty code.
type ProductSummary struct {
	// ProductID is the provider part number.
	ProductID string

	// Description is a representative child charge description.
	Description string

	// ByMonth maps invoice months to summed child charges.
	ByMonth map[string]decimal.Decimal

	// Total is the sum across all months.
	Total decimal.Decimal
}

// ParentCharge is one top-level line item's charge, used for the
// largest-items view.
type ParentCharge struct {
	Month       string
	Category    string
	Description string
	HostName    string
	Hourly      bool
	Recurring   decimal.Decimal
}

// Aggregator accumulates normalized rows into report views.
type Aggregator interface {
	// Add accumulates one row.
	Add(row normalizer.Row)

	// AddRows accumulates a batch of rows.
	AddRows(rows []normalizer.Row)

	// Months returns the invoice months seen, sorted ascending.
	Months() []string

	// MonthTotals returns per-month totals by invoice type, sorted by
	// month then type.
	MonthTotals() []MonthTotal

	// CategorySummaries returns per-category recurring charges with
	// invoice-month columns, sorted by category group then category.
	CategorySummaries() []CategorySummary

	// ProductSummaries returns per-product-code child charges with
	// invoice-month columns, sorted by product code.
	ProductSummaries() []ProductSummary

	// TopParents returns the n largest Parent rows by recurring
	// charge, descending. n <= 0 returns all.
	TopParents(n int) []ParentCharge

	// Reset clears all accumulated data.
	Reset()
}

package display

import (
	"encoding/json"
	"io"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatMonthTotals implements Formatter.FormatMonthTotals.
func (f *jsonFormatter) FormatMonthTotals(w io.Writer, totals []aggregator.MonthTotal) error {
	return f.encode(w, totals)
}

// FormatCategorySummaries implements Formatter.FormatCategorySummaries.
func (f *jsonFormatter) FormatCategorySummaries(w io.Writer, summaries []aggregator.CategorySummary, months []string) error {
	return f.encode(w, summaries)
}

// FormatProductSummaries implements Formatter.FormatProductSummaries.
func (f *jsonFormatter) FormatProductSummaries(w io.Writer, summaries []aggregator.ProductSummary, months []string) error {
	return f.encode(w, summaries)
}

// FormatTopParents implements Formatter.FormatTopParents.
func (f *jsonFormatter) FormatTopParents(w io.Writer, parents []aggregator.ParentCharge) error {
	return f.encode(w, parents)
}

package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
)

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

// FormatMonthTotals implements Formatter.FormatMonthTotals.
func (f *tableFormatter) FormatMonthTotals(w io.Writer, totals []aggregator.MonthTotal) error {
	if err := writeHeader(w, "Invoice Totals by Month", f.config.Compact); err != nil {
		return err
	}

	header := []string{"Month", "Type", "Items", "Recurring", "One-Time"}

	rows := make([][]string, len(totals))
	for i, total := range totals {
		rows[i] = []string{
			total.Month,
			total.Type,
			formatCount(total.Items),
			formatAmount(total.Recurring),
			formatAmount(total.OneTime),
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatCategorySummaries implements Formatter.FormatCategorySummaries.
func (f *tableFormatter) FormatCategorySummaries(w io.Writer, summaries []aggregator.CategorySummary, months []string) error {
	if err := writeHeader(w, "Recurring Charges by Category", f.config.Compact); err != nil {
		return err
	}

	header := make([]string, 0, len(months)+3)
	header = append(header, "Group", "Category")
	header = append(header, months...)
	header = append(header, "Total")

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		row := make([]string, 0, len(header))
		row = append(row, summary.CategoryGroup, summary.Category)
		for _, month := range months {
			row = append(row, formatAmount(summary.ByMonth[month]))
		}
		row = append(row, formatAmount(summary.Total))
		rows = append(rows, row)
	}

	return f.writeTable(w, header, rows)
}

// FormatProductSummaries implements Formatter.FormatProductSummaries.
func (f *tableFormatter) FormatProductSummaries(w io.Writer, summaries []aggregator.ProductSummary, months []string) error {
	if err := writeHeader(w, "Child Charges by Product", f.config.Compact); err != nil {
		return err
	}

	header := make([]string, 0, len(months)+3)
	header = append(header, "Product", "Description")
	header = append(header, months...)
	header = append(header, "Total")

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		row := make([]string, 0, len(header))
		row = append(row, summary.ProductID, summary.Description)
		for _, month := range months {
			row = append(row, formatAmount(summary.ByMonth[month]))
		}
		row = append(row, formatAmount(summary.Total))
		rows = append(rows, row)
	}

	return f.writeTable(w, header, rows)
}

// FormatTopParents implements Formatter.FormatTopParents.
func (f *tableFormatter) FormatTopParents(w io.Writer, parents []aggregator.ParentCharge) error {
	if err := writeHeader(w, "Largest Recurring Charges", f.config.Compact); err != nil {
		return err
	}

	header := []string{"Rank", "Month", "Category", "Description", "Host", "Hourly", "Recurring"}

	rows := make([][]string, len(parents))
	for i, parent := range parents {
		hourly := ""
		if parent.Hourly {
			hourly = "yes"
		}
		rows[i] = []string{
			fmt.Sprintf("#%d", i+1),
			parent.Month,
			parent.Category,
			parent.Description,
			parent.HostName,
			hourly,
			formatAmount(parent.Recurring),
		}
	}

	return f.writeTable(w, header, rows)
}

// writeTable writes a formatted table, shrinking the widest column
// when the natural width exceeds the configured maximum.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	// Calculate column widths.
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	f.fitWidths(header, widths)

	// Write header.
	if err := f.writeRow(w, header, widths); err != nil {
		return err
	}

	// Write separator.
	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths); err != nil {
			return err
		}
	}

	// Write rows.
	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}

	// Add spacing.
	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// fitWidths narrows the widest columns until the table fits within
// MaxWidth. Header widths are the floor so column titles stay intact.
func (f *tableFormatter) fitWidths(header []string, widths []int) {
	if f.config.MaxWidth <= 0 {
		return
	}

	gap := 2
	if f.config.Compact {
		gap = 1
	}

	for {
		total := gap * (len(widths) - 1)
		for _, w := range widths {
			total += w
		}
		if total <= f.config.MaxWidth {
			return
		}

		widest := -1
		for i, w := range widths {
			if w > len(header[i]) && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			return
		}
		widths[widest]--
	}
}

// writeRow writes a single table row.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	for i, cell := range cells {
		if i > 0 {
			if f.config.Compact {
				if _, err := fmt.Fprint(w, " "); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprint(w, "  "); err != nil {
					return err
				}
			}
		}

		format := fmt.Sprintf("%%-%ds", widths[i])
		if _, err := fmt.Fprintf(w, format, truncate(cell, widths[i])); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

package display

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
)

// csvFormatter formats output as comma-separated values, suitable for
// loading into a spreadsheet.
type csvFormatter struct {
	config Config
}

func (f *csvFormatter) write(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatMonthTotals implements Formatter.FormatMonthTotals.
func (f *csvFormatter) FormatMonthTotals(w io.Writer, totals []aggregator.MonthTotal) error {
	records := [][]string{{"month", "type", "items", "recurring", "one_time"}}
	for _, total := range totals {
		records = append(records, []string{
			total.Month,
			total.Type,
			strconv.Itoa(total.Items),
			formatAmount(total.Recurring),
			formatAmount(total.OneTime),
		})
	}
	return f.write(w, records)
}

// FormatCategorySummaries implements Formatter.FormatCategorySummaries.
func (f *csvFormatter) FormatCategorySummaries(w io.Writer, summaries []aggregator.CategorySummary, months []string) error {
	header := append([]string{"category_group", "category"}, months...)
	header = append(header, "total")
	records := [][]string{header}

	for _, summary := range summaries {
		record := []string{summary.CategoryGroup, summary.Category}
		for _, month := range months {
			record = append(record, formatAmount(summary.ByMonth[month]))
		}
		record = append(record, formatAmount(summary.Total))
		records = append(records, record)
	}
	return f.write(w, records)
}

// FormatProductSummaries implements Formatter.FormatProductSummaries.
func (f *csvFormatter) FormatProductSummaries(w io.Writer, summaries []aggregator.ProductSummary, months []string) error {
	header := append([]string{"product", "description"}, months...)
	header = append(header, "total")
	records := [][]string{header}

	for _, summary := range summaries {
		record := []string{summary.ProductID, summary.Description}
		for _, month := range months {
			record = append(record, formatAmount(summary.ByMonth[month]))
		}
		record = append(record, formatAmount(summary.Total))
		records = append(records, record)
	}
	return f.write(w, records)
}

// FormatTopParents implements Formatter.FormatTopParents.
func (f *csvFormatter) FormatTopParents(w io.Writer, parents []aggregator.ParentCharge) error {
	records := [][]string{{"month", "category", "description", "host", "hourly", "recurring"}}
	for _, parent := range parents {
		records = append(records, []string{
			parent.Month,
			parent.Category,
			parent.Description,
			parent.HostName,
			strconv.FormatBool(parent.Hourly),
			formatAmount(parent.Recurring),
		})
	}
	return f.write(w, records)
}

package cycle

import (
	"fmt"
	"time"
)

// InvoiceRange converts an inclusive YYYY-MM month range into the pair of
// billing-zone instants that bound it under the cutoff rule.
//
// Parameters:
//   - start: First invoice month to include (YYYY-MM)
//   - end: Last invoice month to include (YYYY-MM)
//
// Returns:
//   - Range start: midnight on the 20th of the month preceding start
//   - Range end: midnight on the 20th of the end month
//   - ErrInvalidMonth if either month string does not parse
//   - ErrInvalidDateRange if the adjusted range is empty or inverted
//
// Callers filter raw invoices by createDate in [rangeStart, rangeEnd).
func (c Calculator) InvoiceRange(start, end string) (time.Time, time.Time, error) {
	startMonth, err := c.parseMonth(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMonth, err := c.parseMonth(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// The 20th exists in every month, so subtracting one month from it
	// never normalizes across a month boundary.
	rangeStart := time.Date(startMonth.Year(), startMonth.Month(), CutoffDay+1, 0, 0, 0, 0, c.loc).AddDate(0, -1, 0)
	rangeEnd := time.Date(endMonth.Year(), endMonth.Month(), CutoffDay+1, 0, 0, 0, 0, c.loc)

	if !rangeStart.Before(rangeEnd) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s to %s", ErrInvalidDateRange, start, end)
	}

	return rangeStart, rangeEnd, nil
}

// InvoiceMonth maps a raw invoice timestamp to its canonical YYYY-MM
// invoice month label.
//
// The timestamp is converted to the billing zone first. Days after the
// cutoff belong to the following month's invoice.
func (c Calculator) InvoiceMonth(t time.Time) string {
	t = t.In(c.loc)
	year, month := t.Year(), int(t.Month())
	if t.Day() > CutoffDay {
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthSpan returns the full calendar-month span containing the month
// that is monthsAgo months before t, as [first day, last day] midnights
// in the billing zone. monthsAgo of zero spans t's own month.
func (c Calculator) MonthSpan(t time.Time, monthsAgo int) (time.Time, time.Time) {
	t = t.In(c.loc)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc).AddDate(0, -monthsAgo, 0)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// MonthEnd returns midnight on the last day of t's calendar month in the
// billing zone.
func (c Calculator) MonthEnd(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in t's calendar month,
// accounting for leap years.
func (c Calculator) DaysInMonth(t time.Time) int {
	return c.MonthEnd(t).Day()
}

// LastFullMonths resolves a trailing month count into a (start, end)
// YYYY-MM pair under the cutoff rule, relative to now.
//
// If now falls after the cutoff day the current month's invoice is
// already assembled and becomes the end month; otherwise the previous
// month is the most recent complete one.
func (c Calculator) LastFullMonths(now time.Time, months int) (string, string) {
	if months < 1 {
		months = 1
	}
	now = now.In(c.loc)

	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.loc)
	if now.Day() <= CutoffDay {
		end = end.AddDate(0, -1, 0)
	}
	start := end.AddDate(0, -(months - 1), 0)

	return start.Format(monthLayout), end.Format(monthLayout)
}

// parseMonth parses a YYYY-MM label in the billing zone.
func (c Calculator) parseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t, nil
}

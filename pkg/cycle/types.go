// Package cycle implements the provider's invoice cutoff calendar.
//
// A contractual invoice month runs from the 20th of the prior calendar
// month through the end of day on the 19th of the named month, measured
// in the provider's billing time zone. The calculator converts between
// user-facing YYYY-MM month labels and the instants that bound them, and
// assigns raw invoice timestamps to their canonical invoice month.
//
// Example usage:
//
//	calc, err := cycle.NewDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	start, end, err := calc.InvoiceRange("2022-06", "2022-06")
//	// start = 2022-05-20T00:00:00 CDT, end = 2022-06-20T00:00:00 CDT
//	month := calc.InvoiceMonth(invoice.CreateDate)
//	// "2022-06" or "2022-07" depending on the cutoff
package cycle

import "time"

const (
	// CutoffDay is the last day of a calendar month that still bills to
	// that month's invoice. Timestamps after this day roll forward.
	CutoffDay = 19

	// DefaultZone is the contractual billing time zone. Invoice cutoffs
	// are defined in this zone regardless of where the tool runs.
	DefaultZone = "America/Chicago"

	// monthLayout is the accepted format for month arguments.
	monthLayout = "2006-01"
)

// Calculator performs cutoff arithmetic in a fixed billing zone.
//
// The zero value is not usable; construct with New or NewDefault.
// All methods are pure functions over calendar arithmetic and are safe
// for concurrent use.
type Calculator struct {
	loc *time.Location
}

// New creates a Calculator bound to the given billing zone.
func New(loc *time.Location) Calculator {
	return Calculator{loc: loc}
}

// NewDefault creates a Calculator in the contractual billing zone.
//
// Returns an error if the zone database does not contain DefaultZone.
func NewDefault() (Calculator, error) {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		return Calculator{}, err
	}
	return New(loc), nil
}

// Location returns the billing zone the calculator operates in.
func (c Calculator) Location() *time.Location {
	return c.loc
}

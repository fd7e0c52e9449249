package cycle

import (
	"errors"
	"testing"
	"time"
)

func testCalculator(t *testing.T) Calculator {
	t.Helper()
	calc, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault() error = %v", err)
	}
	return calc
}

func TestInvoiceMonth(t *testing.T) {
	calc := testCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "on cutoff day stays in current month",
			date: time.Date(2022, 7, 19, 23, 0, 0, 0, loc),
			want: "2022-07",
		},
		{
			name: "day after cutoff rolls forward",
			date: time.Date(2022, 7, 20, 0, 0, 0, 0, loc),
			want: "2022-08",
		},
		{
			name: "first of month",
			date: time.Date(2022, 3, 1, 8, 30, 0, 0, loc),
			want: "2022-03",
		},
		{
			name: "december rollover into next year",
			date: time.Date(2022, 12, 25, 12, 0, 0, 0, loc),
			want: "2023-01",
		},
		{
			name: "leap day stays in february",
			date: time.Date(2024, 2, 29, 6, 0, 0, 0, loc),
			want: "2024-03",
		},
		{
			name: "converts from other zones before comparing",
			date: time.Date(2022, 7, 20, 3, 0, 0, 0, time.UTC), // still the 19th in Chicago
			want: "2022-07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.InvoiceMonth(tt.date); got != tt.want {
				t.Errorf("InvoiceMonth(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestInvoiceRange(t *testing.T) {
	calc := testCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{
			name:      "single month",
			start:     "2022-06",
			end:       "2022-06",
			wantStart: time.Date(2022, 5, 20, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2022, 6, 20, 0, 0, 0, 0, loc),
		},
		{
			name:      "range spanning a year boundary",
			start:     "2022-12",
			end:       "2023-02",
			wantStart: time.Date(2022, 11, 20, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2023, 2, 20, 0, 0, 0, 0, loc),
		},
		{
			name:      "january start reaches back into prior year",
			start:     "2023-01",
			end:       "2023-01",
			wantStart: time.Date(2022, 12, 20, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2023, 1, 20, 0, 0, 0, 0, loc),
		},
		{
			name:    "inverted range",
			start:   "2022-07",
			end:     "2022-06",
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "malformed start month",
			start:   "2022/06",
			end:     "2022-06",
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "month out of range",
			start:   "2022-13",
			end:     "2022-12",
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "missing zero padding",
			start:   "2022-6",
			end:     "2022-06",
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := calc.InvoiceRange(tt.start, tt.end)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("InvoiceRange() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("InvoiceRange() error = %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestMonthSpan(t *testing.T) {
	calc := testCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name      string
		date      time.Time
		monthsAgo int
		wantFirst time.Time
		wantLast  time.Time
	}{
		{
			name:      "current month",
			date:      time.Date(2022, 7, 14, 10, 0, 0, 0, loc),
			monthsAgo: 0,
			wantFirst: time.Date(2022, 7, 1, 0, 0, 0, 0, loc),
			wantLast:  time.Date(2022, 7, 31, 0, 0, 0, 0, loc),
		},
		{
			name:      "previous month from march crosses into february",
			date:      time.Date(2022, 3, 31, 0, 0, 0, 0, loc),
			monthsAgo: 1,
			wantFirst: time.Date(2022, 2, 1, 0, 0, 0, 0, loc),
			wantLast:  time.Date(2022, 2, 28, 0, 0, 0, 0, loc),
		},
		{
			name:      "leap february",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, loc),
			monthsAgo: 1,
			wantFirst: time.Date(2024, 2, 1, 0, 0, 0, 0, loc),
			wantLast:  time.Date(2024, 2, 29, 0, 0, 0, 0, loc),
		},
		{
			name:      "two months prior across a year boundary",
			date:      time.Date(2023, 1, 5, 0, 0, 0, 0, loc),
			monthsAgo: 2,
			wantFirst: time.Date(2022, 11, 1, 0, 0, 0, 0, loc),
			wantLast:  time.Date(2022, 11, 30, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := calc.MonthSpan(tt.date, tt.monthsAgo)
			if !first.Equal(tt.wantFirst) {
				t.Errorf("first = %v, want %v", first, tt.wantFirst)
			}
			if !last.Equal(tt.wantLast) {
				t.Errorf("last = %v, want %v", last, tt.wantLast)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	calc := testCalculator(t)
	loc := calc.Location()

	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2022, 6, 21, 0, 0, 0, 0, loc), 30},
		{time.Date(2022, 7, 1, 0, 0, 0, 0, loc), 31},
		{time.Date(2022, 2, 10, 0, 0, 0, 0, loc), 28},
		{time.Date(2024, 2, 10, 0, 0, 0, 0, loc), 29},
	}

	for _, tt := range tests {
		if got := calc.DaysInMonth(tt.date); got != tt.want {
			t.Errorf("DaysInMonth(%v) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestLastFullMonths(t *testing.T) {
	calc := testCalculator(t)
	loc := calc.Location()

	tests := []struct {
		name      string
		now       time.Time
		months    int
		wantStart string
		wantEnd   string
	}{
		{
			name:      "after cutoff the current month is complete",
			now:       time.Date(2022, 7, 25, 0, 0, 0, 0, loc),
			months:    1,
			wantStart: "2022-07",
			wantEnd:   "2022-07",
		},
		{
			name:      "before cutoff falls back to previous month",
			now:       time.Date(2022, 7, 10, 0, 0, 0, 0, loc),
			months:    1,
			wantStart: "2022-06",
			wantEnd:   "2022-06",
		},
		{
			name:      "multiple months",
			now:       time.Date(2022, 7, 25, 0, 0, 0, 0, loc),
			months:    3,
			wantStart: "2022-05",
			wantEnd:   "2022-07",
		},
		{
			name:      "spanning a year boundary",
			now:       time.Date(2023, 1, 10, 0, 0, 0, 0, loc),
			months:    2,
			wantStart: "2022-11",
			wantEnd:   "2022-12",
		},
		{
			name:      "zero months treated as one",
			now:       time.Date(2022, 7, 25, 0, 0, 0, 0, loc),
			months:    0,
			wantStart: "2022-07",
			wantEnd:   "2022-07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := calc.LastFullMonths(tt.now, tt.months)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("LastFullMonths() = (%q, %q), want (%q, %q)",
					start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

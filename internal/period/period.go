package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearMonth identifies a calendar month, e.g. 2025-03.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Of returns the YearMonth a date falls in.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// New returns the YearMonth for year and month (1-12).
func New(year, month int) YearMonth {
	return YearMonth{Year: year, Month: time.Month(month)}
}

// Parse parses "2025-03" into a YearMonth.
func Parse(s string) (YearMonth, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("invalid year-month format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("invalid month in %q: %d out of range", s, month)
	}

	return New(year, month), nil
}

// String formats as "YYYY-MM".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// IsZero reports whether ym is the zero value.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Before reports whether ym is earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month, rolling December into January.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the given day of the month at UTC midnight. Days past the end
// of the month are clamped to the last day; days below 1 become 1.
func (ym YearMonth) Date(day int) time.Time {
	if last := ym.Days(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to a calendar date at UTC midnight, keeping the year,
// month and day as written.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// dateLayout is the ISO-8601 calendar date format used for storage.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day or time zone component.
// The zero value is not a valid date; construct via NewDate, ParseDate or
// DateOf.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date from its components. The components are not range
// checked; use ParseDate for untrusted input.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of the given instant in the instant's
// location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a YYYY-MM-DD string into a Date. Impossible dates
// (e.g. 2023-02-30) are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: parsing date %q: %v", ErrInvalidDateFormat, s, err)
	}
	return DateOf(t), nil
}

// ErrInvalidDateFormat is returned by ParseDate when the input is not a
// valid YYYY-MM-DD date. It is surfaced explicitly so the caller can log
// corrupt stored values before coercing them to absent.
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d == other
}

// Time returns the instant at midnight of d in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// PeriodBetween returns the whole-year and whole-month components of the
// calendar period from one date to a later date. The day-of-month remainder
// only participates as a borrow: a partial month does not count. Passing a
// "to" before "from" yields negative components; callers validate ordering
// beforehand.
func PeriodBetween(from, to Date) (years, months int) {
	years = to.Year - from.Year
	months = int(to.Month) - int(from.Month)
	if to.Day < from.Day {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months
}

package generic

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// TIME POINT - Day-granular instant
// =============================================================================

// TimePoint is a calendar date. Any time-of-day component carried in Time is
// ignored by comparisons and arithmetic helpers in this file.
type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar date in t's own location.
// 2024-03-10T23:30-05:00 is March 10, not March 11.
func FromTime(t time.Time) TimePoint {
	if t.IsZero() {
		return TimePoint{}
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }

// AddMonths moves n calendar months from the first of tp's month and then
// clamps the day, so Jan 31 + 1 month is Feb 28/29 rather than Mar 2/3.
func (tp TimePoint) AddMonths(n int) TimePoint {
	first := time.Date(tp.Time.Year(), tp.Time.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := daysIn(first.Year(), first.Month())
	day := tp.Time.Day()
	if day > last {
		day = last
	}
	return NewTimePoint(first.Year(), first.Month(), day)
}

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.normalize().Format(DateLayout)
}

func (tp TimePoint) MarshalJSON() ([]byte, error) {
	if tp.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + tp.String() + `"`), nil
}

func (tp *TimePoint) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*tp = TimePoint{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

func MinTimePoint(a, b TimePoint) TimePoint {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxTimePoint(a, b TimePoint) TimePoint {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaySpan returns the inclusive number of calendar days in [start, end].
// start == end is 1. Callers must ensure start <= end; a reversed span
// yields a value <= 0.
func DaySpan(start, end TimePoint) int {
	return DaysBetween(start, end) + 1
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns end - start in whole calendar days.
func DaysBetween(from, to TimePoint) int {
	// Day numbers, not Sub: time.Duration saturates at ~292 years.
	return int(to.normalize().Unix()/secondsPerDay - from.normalize().Unix()/secondsPerDay)
}

// MonthsElapsed returns the whole calendar months between from and to with
// floor semantics: Jan 15 -> Feb 10 is 0, Jan 15 -> Feb 20 is 1.
func MonthsElapsed(from, to TimePoint) (int, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrInvalidPeriod, to, from)
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months, nil
}

func StartOfYear(year int) TimePoint                    { return NewTimePoint(year, time.January, 1) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, daysIn(year, month))
}

func StartOfYearOf(tp TimePoint) TimePoint  { return StartOfYear(tp.Year()) }
func StartOfMonthOf(tp TimePoint) TimePoint { return StartOfMonth(tp.Year(), tp.Month()) }

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b TimePoint) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// MONTH KEY
// =============================================================================

// MonthKey identifies a calendar month. It orders chronologically and
// renders as "March 2025".
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthOf(tp TimePoint) MonthKey { return MonthKey{Year: tp.Year(), Month: tp.Month()} }

func (k MonthKey) String() string { return fmt.Sprintf("%s %d", k.Month, k.Year) }

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k MonthKey) Start() TimePoint { return StartOfMonth(k.Year, k.Month) }
func (k MonthKey) End() TimePoint   { return EndOfMonth(k.Year, k.Month) }
func (k MonthKey) Next() MonthKey   { return MonthOf(k.Start().AddMonths(1)) }

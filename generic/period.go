package generic

// =============================================================================
// PERIOD - Inclusive window of calendar days
// =============================================================================

// Period is the closed date window [Start, End].
//
// Examples:
//   - A leave request: Mar 10 - Mar 12
//   - Year to date: max(join, Jan 1) - as-of
//   - A calendar month: Mar 1 - Mar 31
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the full calendar month identified by k.
func MonthPeriod(k MonthKey) Period {
	return Period{Start: k.Start(), End: k.End()}
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool {
	return p.Start.BeforeOrEqual(p.End)
}

// Span returns the inclusive day count of the period.
func (p Period) Span() int {
	return DaySpan(p.Start, p.End)
}

// Intersect returns the overlap of p and other. ok is false when they do not overlap.
func (p Period) Intersect(other Period) (Period, bool) {
	out := Period{
		Start: MaxTimePoint(p.Start, other.Start),
		End:   MinTimePoint(p.End, other.End),
	}
	return out, out.Valid()
}

// Months returns every calendar month the period touches, oldest first.
func (p Period) Months() []MonthKey {
	if !p.Valid() {
		return nil
	}
	var months []MonthKey
	last := MonthOf(p.End)
	for k := MonthOf(p.Start); !last.Before(k); k = k.Next() {
		months = append(months, k)
	}
	return months
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

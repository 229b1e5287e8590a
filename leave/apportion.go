/*
apportion.go - Month apportionment of leave usage

PURPOSE:
  Splits each request's day quantity across the calendar months it touches
  and aggregates per-month totals for reporting. Unlike the balance
  calculator there is no as-of cutoff and no deductible filter: reports
  show all leave activity, including unpaid leave and rejected requests.

SPLITTING:
  Same month:         the whole quantity goes to that month.
  Fixed quantity:     (e.g. halfday) the whole quantity goes to the month
                      containing StartDate; never split.
  Spans months:       walk month by month from StartDate; each month gets
                      min(remaining, days of the request inside the month).

  Example: 2024-05-28..2024-06-03 (7 days) -> May 2024: 4, June 2024: 3

INVARIANT:
  For every request, the allocations across all months sum to its
  Classifier.DeductibleDays. No days are created or lost by splitting.

ORDERING:
  Requests are processed by ascending StartDate (then ID), so output is
  identical regardless of input order. Months are returned most recent first.

DATA QUALITY:
  Malformed requests are not allocated. They are returned in
  Apportionment.Issues so reports can show them as warnings.

SEE ALSO:
  - classifier.go: Day quantity per request
  - report/pdf.go: Renders an Apportionment
*/
package leave

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Allocation is the share of one request assigned to one month.
type Allocation struct {
	RequestID  generic.RequestID  `json:"requestId"`
	EmployeeID generic.EmployeeID `json:"employeeId"`
	Type       LeaveType          `json:"type"`
	Status     Status             `json:"status"`
	StartDate  generic.TimePoint  `json:"startDate"`
	EndDate    generic.TimePoint  `json:"endDate"`
	Days       generic.Amount     `json:"days"`
}

// TypeStat aggregates one leave type within a month.
type TypeStat struct {
	Days         generic.Amount `json:"days"`
	RequestCount int            `json:"requestCount"`
}

// MonthlyApportionment is the report for one calendar month.
type MonthlyApportionment struct {
	Month          generic.MonthKey       `json:"-"`
	Label          string                 `json:"month"`
	Allocations    []Allocation           `json:"allocations"`
	TotalDays      generic.Amount         `json:"totalDays"`
	ApprovedDays   generic.Amount         `json:"approvedDays"`
	PendingDays    generic.Amount         `json:"pendingDays"`
	RejectedDays   generic.Amount         `json:"rejectedDays"`
	LeaveTypeStats map[LeaveType]TypeStat `json:"leaveTypeStats"`
}

// DataQualityIssue is a request the apportioner could not allocate.
type DataQualityIssue struct {
	RequestID  generic.RequestID  `json:"requestId"`
	EmployeeID generic.EmployeeID `json:"employeeId"`
	Reason     string             `json:"reason"`
}

// Apportionment is the full report, most recent month first.
type Apportionment struct {
	Months []MonthlyApportionment `json:"months"`
	Issues []DataQualityIssue     `json:"issues"`
}

// Month returns the apportionment for k, if any leave touched it.
func (a Apportionment) Month(k generic.MonthKey) (MonthlyApportionment, bool) {
	for _, m := range a.Months {
		if m.Month == k {
			return m, true
		}
	}
	return MonthlyApportionment{}, false
}

// AllocatedFor sums the allocations of one request across all months.
func (a Apportionment) AllocatedFor(id generic.RequestID) generic.Amount {
	total := generic.Days(0)
	for _, m := range a.Months {
		for _, alloc := range m.Allocations {
			if alloc.RequestID == id {
				total = total.Add(alloc.Days)
			}
		}
	}
	return total
}

// =============================================================================
// APPORTIONER
// =============================================================================

// Apportioner splits leave requests into calendar months.
type Apportioner struct {
	Policy Policy
	Logger logrus.FieldLogger
}

// NewApportioner creates an apportioner for the given policy.
func NewApportioner(policy Policy, logger logrus.FieldLogger) *Apportioner {
	return &Apportioner{Policy: policy, Logger: logger}
}

type monthShare struct {
	month generic.MonthKey
	days  generic.Amount
}

// ApportionByMonth splits every request across the months it spans and
// aggregates per month. The input slice is not modified.
func (a *Apportioner) ApportionByMonth(requests []LeaveRequest) Apportionment {
	ordered := make([]LeaveRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].StartDate.Equal(ordered[j].StartDate) {
			return ordered[i].StartDate.Before(ordered[j].StartDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	classifier := Classifier{Policy: a.Policy}
	months := make(map[generic.MonthKey]*MonthlyApportionment)
	result := Apportionment{Issues: []DataQualityIssue{}}

	for _, r := range ordered {
		days, err := classifier.DeductibleDays(r)
		if err != nil {
			a.logger().WithFields(logrus.Fields{
				"request_id":  r.ID,
				"employee_id": r.EmployeeID,
				"reason":      err.Error(),
			}).Warn("leave request excluded from monthly report")
			result.Issues = append(result.Issues, DataQualityIssue{
				RequestID:  r.ID,
				EmployeeID: r.EmployeeID,
				Reason:     err.Error(),
			})
			continue
		}

		for _, share := range a.split(r, days, classifier.IsFixed(r.Type)) {
			m, ok := months[share.month]
			if !ok {
				m = newMonthlyApportionment(share.month)
				months[share.month] = m
			}
			m.add(r, share.days)
		}
	}

	keys := make([]generic.MonthKey, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[j].Before(keys[i]) })

	result.Months = make([]MonthlyApportionment, 0, len(keys))
	for _, k := range keys {
		result.Months = append(result.Months, *months[k])
	}
	return result
}

// split assigns days to the months r touches.
func (a *Apportioner) split(r LeaveRequest, days generic.Amount, fixed bool) []monthShare {
	start := generic.MonthOf(r.StartDate)
	if fixed || generic.SameMonth(r.StartDate, r.EndDate) || !days.IsPositive() {
		return []monthShare{{month: start, days: days}}
	}

	var shares []monthShare
	remaining := days
	for _, k := range r.Period().Months() {
		if !remaining.IsPositive() {
			break
		}
		inMonth, _ := r.Period().Intersect(generic.MonthPeriod(k))
		alloc := remaining.Min(generic.NewAmountFromInt(inMonth.Span(), generic.UnitDays))
		shares = append(shares, monthShare{month: k, days: alloc})
		remaining = remaining.Sub(alloc)
	}

	// A multiplier above 1 can leave days over after the last month.
	if remaining.IsPositive() {
		last := &shares[len(shares)-1]
		last.days = last.days.Add(remaining)
	}
	return shares
}

func (a *Apportioner) logger() logrus.FieldLogger {
	if a.Logger == nil {
		return discardLogger
	}
	return a.Logger
}

// =============================================================================
// MONTH AGGREGATION
// =============================================================================

func newMonthlyApportionment(k generic.MonthKey) *MonthlyApportionment {
	return &MonthlyApportionment{
		Month:          k,
		Label:          k.String(),
		TotalDays:      generic.Days(0),
		ApprovedDays:   generic.Days(0),
		PendingDays:    generic.Days(0),
		RejectedDays:   generic.Days(0),
		LeaveTypeStats: make(map[LeaveType]TypeStat),
	}
}

func (m *MonthlyApportionment) add(r LeaveRequest, days generic.Amount) {
	m.Allocations = append(m.Allocations, Allocation{
		RequestID:  r.ID,
		EmployeeID: r.EmployeeID,
		Type:       r.Type,
		Status:     r.Status,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Days:       days,
	})

	m.TotalDays = m.TotalDays.Add(days)
	switch r.Status {
	case StatusApproved:
		m.ApprovedDays = m.ApprovedDays.Add(days)
	case StatusPending:
		m.PendingDays = m.PendingDays.Add(days)
	case StatusRejected:
		m.RejectedDays = m.RejectedDays.Add(days)
	}

	stat, ok := m.LeaveTypeStats[r.Type]
	if !ok {
		stat.Days = generic.Days(0)
	}
	stat.Days = stat.Days.Add(days)
	stat.RequestCount++
	m.LeaveTypeStats[r.Type] = stat
}

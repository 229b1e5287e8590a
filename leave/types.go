/*
Package leave implements the leave accounting engine.

PURPOSE:
  Turns a raw history of leave requests and a join date into
  (a) an authoritative leave balance as of any date, and
  (b) a per-calendar-month apportionment of leave usage for reporting.

  The engine is a pure read-side computation. It never mutates requests,
  holds no state between calls, and performs no I/O of its own; Service
  is the only piece that talks to a Source, and it only reads.

COMPONENTS:
  Classifier:  LeaveRequest -> deductible day quantity (policy-driven)
  Calculator:  Employee + requests + as-of -> LeaveBalance
  Apportioner: requests -> per-month allocations and aggregates
  Service:     Source snapshot -> Calculator / Apportioner

SEE ALSO:
  - policy.go: Accrual rate, deductible set and per-type quantity rules
  - errors.go: InvalidJoinDateError, MalformedLeaveRequestError
  - generic/time.go: DaySpan, MonthsElapsed and month helpers
*/
package leave

import (
	"fmt"
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE TYPE - Closed enumeration
// =============================================================================

type LeaveType string

const (
	TypeAnnual   LeaveType = "annual"
	TypeSick     LeaveType = "sick"
	TypePersonal LeaveType = "personal"
	TypeUnpaid   LeaveType = "unpaid"
	TypeHalfDay  LeaveType = "halfday"
	TypeOther    LeaveType = "other"
)

// AllTypes lists every known leave type in display order.
var AllTypes = []LeaveType{TypeAnnual, TypeSick, TypePersonal, TypeUnpaid, TypeHalfDay, TypeOther}

func (t LeaveType) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypePersonal, TypeUnpaid, TypeHalfDay, TypeOther:
		return true
	}
	return false
}

// ParseLeaveType converts a stored or submitted string into a LeaveType.
func ParseLeaveType(s string) (LeaveType, error) {
	t := LeaveType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown leave type %q", s)
	}
	return t, nil
}

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown leave status %q", s)
	}
	return st, nil
}

// =============================================================================
// EXTERNAL ENTITIES (read-only snapshots)
// =============================================================================

// Employee is the slice of the employee record the engine needs.
type Employee struct {
	ID       generic.EmployeeID
	Name     string
	Email    string
	JoinDate generic.TimePoint
}

// LeaveRequest is a snapshot of a request owned by an external collaborator.
// EndDate is inclusive.
type LeaveRequest struct {
	ID         generic.RequestID
	EmployeeID generic.EmployeeID
	Type       LeaveType
	Status     Status
	StartDate  generic.TimePoint
	EndDate    generic.TimePoint
	Reason     string
	CreatedAt  time.Time
}

// Period returns the inclusive window the request covers.
func (r LeaveRequest) Period() generic.Period {
	return generic.Period{Start: r.StartDate, End: r.EndDate}
}

// Validate checks the request invariants. The returned error is always a
// *MalformedLeaveRequestError.
func (r LeaveRequest) Validate() error {
	switch {
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return &MalformedLeaveRequestError{RequestID: r.ID, EmployeeID: r.EmployeeID, Reason: "missing start or end date"}
	case r.EndDate.Before(r.StartDate):
		return &MalformedLeaveRequestError{RequestID: r.ID, EmployeeID: r.EmployeeID,
			Reason: fmt.Sprintf("end date %s before start date %s", r.EndDate, r.StartDate)}
	case !r.Type.Valid():
		return &MalformedLeaveRequestError{RequestID: r.ID, EmployeeID: r.EmployeeID,
			Reason: fmt.Sprintf("unknown leave type %q", r.Type)}
	case !r.Status.Valid():
		return &MalformedLeaveRequestError{RequestID: r.ID, EmployeeID: r.EmployeeID,
			Reason: fmt.Sprintf("unknown leave status %q", r.Status)}
	}
	return nil
}

// =============================================================================
// LEAVE BALANCE - Derived, never persisted
// =============================================================================

// LeaveBalance is the balance snapshot as of AsOfDate.
type LeaveBalance struct {
	EmployeeID       generic.EmployeeID `json:"employeeId"`
	AsOfDate         generic.TimePoint  `json:"asOfDate"`
	TotalAccrued     generic.Amount     `json:"totalAccrued"`
	TotalTaken       generic.Amount     `json:"totalTaken"`
	PendingRequests  generic.Amount     `json:"pendingRequests"`
	RemainingBalance generic.Amount     `json:"remainingBalance"`
	NextAccrualDate  generic.TimePoint  `json:"nextAccrualDate"`
	AccruedThisYear  generic.Amount     `json:"accruedThisYear"`
	TakenThisYear    generic.Amount     `json:"takenThisYear"`
}

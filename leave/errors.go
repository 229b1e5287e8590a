package leave

import (
	"errors"
	"fmt"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidJoinDate is returned when the employee has no join date or the
	// as-of date precedes it. Bad input, never retried.
	ErrInvalidJoinDate = errors.New("invalid join date")

	// ErrMalformedLeaveRequest is returned for requests with end < start or
	// an unrecognised type or status.
	ErrMalformedLeaveRequest = errors.New("malformed leave request")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidJoinDateError provides details about a join date violation.
type InvalidJoinDateError struct {
	EmployeeID generic.EmployeeID
	JoinDate   generic.TimePoint
	AsOf       generic.TimePoint
}

func (e *InvalidJoinDateError) Error() string {
	if e.JoinDate.IsZero() {
		return fmt.Sprintf("invalid join date: employee %s has no join date", e.EmployeeID)
	}
	return fmt.Sprintf("invalid join date: as-of %s precedes join date %s for employee %s",
		e.AsOf, e.JoinDate, e.EmployeeID)
}

func (e *InvalidJoinDateError) Unwrap() error {
	return ErrInvalidJoinDate
}

// MalformedLeaveRequestError describes why a request cannot be counted.
type MalformedLeaveRequestError struct {
	RequestID  generic.RequestID
	EmployeeID generic.EmployeeID
	Reason     string
}

func (e *MalformedLeaveRequestError) Error() string {
	return fmt.Sprintf("malformed leave request %s: %s", e.RequestID, e.Reason)
}

func (e *MalformedLeaveRequestError) Unwrap() error {
	return ErrMalformedLeaveRequest
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidJoinDate) ||
		errors.Is(err, ErrMalformedLeaveRequest) ||
		errors.Is(err, generic.ErrInvalidPeriod)
}

/*
errors.go - Centralized error types for the generic primitives

PURPOSE:
  Sentinel errors shared by every layer. Domain packages wrap these with
  additional context; the leave package defines its own taxonomy on top.

ERROR CATEGORIES:
  1. Calendar errors - Reversed windows
  2. Lookup errors - Missing employees or requests in a collaborator store
  3. Conflict errors - Status transitions that lost a race

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      // 404
  }

SEE ALSO:
  - leave/errors.go: InvalidJoinDateError, MalformedLeaveRequestError
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a referenced leave request doesn't exist.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrStatusConflict is returned when a request is no longer in the
	// status a transition expects (e.g. already approved).
	ErrStatusConflict = errors.New("leave request status changed")

	// ErrStoreRequired is returned when an operation requires a specific store capability.
	ErrStoreRequired = errors.New("operation requires extended store interface")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

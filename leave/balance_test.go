package leave_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

func TestBalance_NoRequests_AccruesPerMonth(t *testing.T) {
	// GIVEN: Employee joined 2024-01-01, no leave
	// WHEN: Balance as of 2024-07-01
	// THEN: 6 months * 1.5 = 9 days accrued and remaining

	bal, err := newCalculator().CalculateLeaveBalance(employee(date(2024, time.January, 1)), nil, date(2024, time.July, 1))
	require.NoError(t, err)

	assertDays(t, 9, bal.TotalAccrued)
	assertDays(t, 0, bal.TotalTaken)
	assertDays(t, 0, bal.PendingRequests)
	assertDays(t, 9, bal.RemainingBalance)
	assert.Equal(t, "2024-08-01", bal.NextAccrualDate.String())
	assert.Equal(t, "2024-07-01", bal.AsOfDate.String())
}

func TestBalance_ApprovedAndPending(t *testing.T) {
	// GIVEN: 3 approved annual days in March and 1 pending sick day in June
	// THEN: taken = 3, pending = 1, remaining = 9 - 3 - 1 = 5

	emp := employee(date(2024, time.January, 1))
	approved := request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 10), date(2024, time.March, 12))
	pending := request(leave.TypeSick, leave.StatusPending, date(2024, time.June, 1), date(2024, time.June, 1))

	calc := newCalculator()

	bal, err := calc.CalculateLeaveBalance(emp, []leave.LeaveRequest{approved}, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 3, bal.TotalTaken)
	assertDays(t, 6, bal.RemainingBalance)

	bal, err = calc.CalculateLeaveBalance(emp, []leave.LeaveRequest{approved, pending}, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 3, bal.TotalTaken)
	assertDays(t, 1, bal.PendingRequests)
	assertDays(t, 5, bal.RemainingBalance)
	assertDays(t, 9, bal.TotalAccrued, "pending never reduces accrual")
}

func TestBalance_HalfDay_AddsHalf(t *testing.T) {
	emp := employee(date(2024, time.January, 1))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 10), date(2024, time.March, 12)),
		request(leave.TypeHalfDay, leave.StatusApproved, date(2024, time.April, 15), date(2024, time.April, 15)),
	}

	bal, err := newCalculator().CalculateLeaveBalance(emp, reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 3.5, bal.TotalTaken)
	assertDays(t, 5.5, bal.RemainingBalance)
}

func TestBalance_AsOfBeforeJoin_InvalidJoinDate(t *testing.T) {
	_, err := newCalculator().CalculateLeaveBalance(employee(date(2024, time.January, 1)), nil, date(2023, time.December, 31))

	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrInvalidJoinDate)
	var joinErr *leave.InvalidJoinDateError
	require.ErrorAs(t, err, &joinErr)
	assert.Equal(t, "2024-01-01", joinErr.JoinDate.String())
	assert.True(t, leave.IsClientError(err))
}

func TestBalance_MissingJoinDate_InvalidJoinDate(t *testing.T) {
	_, err := newCalculator().CalculateLeaveBalance(leave.Employee{ID: "emp-x"}, nil, date(2024, time.July, 1))
	assert.ErrorIs(t, err, leave.ErrInvalidJoinDate)
}

// =============================================================================
// FILTERING
// =============================================================================

func TestBalance_ExcludesFutureNonDeductibleAndRejected(t *testing.T) {
	emp := employee(date(2024, time.January, 1))
	reqs := []leave.LeaveRequest{
		// after as-of
		request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.July, 2), date(2024, time.July, 5)),
		// not deductible
		request(leave.TypeUnpaid, leave.StatusApproved, date(2024, time.February, 1), date(2024, time.February, 5)),
		request(leave.TypeOther, leave.StatusPending, date(2024, time.February, 6), date(2024, time.February, 6)),
		// rejected
		request(leave.TypePersonal, leave.StatusRejected, date(2024, time.May, 1), date(2024, time.May, 2)),
	}

	bal, err := newCalculator().CalculateLeaveBalance(emp, reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 0, bal.TotalTaken)
	assertDays(t, 0, bal.PendingRequests)
	assertDays(t, 9, bal.RemainingBalance)
}

func TestBalance_RequestStartingOnAsOf_IsCounted(t *testing.T) {
	emp := employee(date(2024, time.January, 1))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.July, 1), date(2024, time.July, 2)),
	}

	bal, err := newCalculator().CalculateLeaveBalance(emp, reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 2, bal.TotalTaken)
}

func TestBalance_CustomDeductibleSet(t *testing.T) {
	// GIVEN: a policy where every approved type is deductible
	policy := leave.DefaultPolicy()
	policy.Deductible[leave.TypeUnpaid] = true
	calc := leave.NewCalculator(policy, nil)

	reqs := []leave.LeaveRequest{
		request(leave.TypeUnpaid, leave.StatusApproved, date(2024, time.February, 1), date(2024, time.February, 2)),
	}
	bal, err := calc.CalculateLeaveBalance(employee(date(2024, time.January, 1)), reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 2, bal.TotalTaken)
}

// =============================================================================
// MALFORMED REQUESTS - skipped and logged
// =============================================================================

func TestBalance_MalformedRequest_SkippedAndLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	calc := leave.NewCalculator(leave.DefaultPolicy(), logger)

	emp := employee(date(2024, time.January, 1))
	bad := request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 12), date(2024, time.March, 10))
	good := request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 20), date(2024, time.March, 20))

	bal, err := calc.CalculateLeaveBalance(emp, []leave.LeaveRequest{bad, good}, date(2024, time.July, 1))
	require.NoError(t, err, "one bad record must not abort the balance")
	assertDays(t, 1, bal.TotalTaken)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, bad.ID, entry.Data["request_id"])
	assert.Equal(t, generic.EmployeeID("emp-1"), entry.Data["employee_id"])
}

// =============================================================================
// YEAR TO DATE
// =============================================================================

func TestBalance_YearToDate_JoinedPriorYear(t *testing.T) {
	// GIVEN: joined 2023-06-15, as-of 2024-04-20
	// THEN: total months = 10 (Jun 15 -> Apr 15), YTD months = 3 (Jan 1 -> Apr 1)
	emp := employee(date(2023, time.June, 15))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2023, time.December, 27), date(2023, time.December, 29)),
		request(leave.TypeSick, leave.StatusApproved, date(2024, time.February, 5), date(2024, time.February, 6)),
	}

	bal, err := newCalculator().CalculateLeaveBalance(emp, reqs, date(2024, time.April, 20))
	require.NoError(t, err)
	assertDays(t, 15, bal.TotalAccrued)
	assertDays(t, 4.5, bal.AccruedThisYear)
	assertDays(t, 5, bal.TotalTaken)
	assertDays(t, 2, bal.TakenThisYear)
	assertDays(t, 10, bal.RemainingBalance)
}

func TestBalance_YearToDate_JoinedThisYear(t *testing.T) {
	emp := employee(date(2024, time.March, 1))

	bal, err := newCalculator().CalculateLeaveBalance(emp, nil, date(2024, time.September, 15))
	require.NoError(t, err)
	assertDays(t, 9, bal.TotalAccrued)
	assertDays(t, 9, bal.AccruedThisYear, "window starts at join date")
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestBalance_Monotonicity(t *testing.T) {
	emp := employee(date(2023, time.January, 31))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2023, time.March, 1), date(2023, time.March, 5)),
	}
	calc := newCalculator()

	prev := generic.Days(0)
	for d := date(2023, time.January, 31); d.Before(date(2025, time.March, 1)); d = d.AddDays(3) {
		bal, err := calc.CalculateLeaveBalance(emp, reqs, d)
		require.NoError(t, err)
		assert.False(t, bal.TotalAccrued.LessThan(prev), "accrual decreased at %s", d)
		prev = bal.TotalAccrued
	}
}

func TestBalance_NonNegative_WhenOverdrawn(t *testing.T) {
	emp := employee(date(2024, time.January, 1))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.February, 1), date(2024, time.February, 20)),
		request(leave.TypeSick, leave.StatusPending, date(2024, time.March, 1), date(2024, time.March, 10)),
	}

	bal, err := newCalculator().CalculateLeaveBalance(emp, reqs, date(2024, time.April, 1))
	require.NoError(t, err)
	assertDays(t, 4.5, bal.TotalAccrued)
	assertDays(t, 20, bal.TotalTaken)
	assertDays(t, 0, bal.RemainingBalance)
}

func TestBalance_Idempotent(t *testing.T) {
	emp := employee(date(2024, time.January, 1))
	reqs := []leave.LeaveRequest{
		request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 10), date(2024, time.March, 12)),
		request(leave.TypeSick, leave.StatusPending, date(2024, time.June, 1), date(2024, time.June, 1)),
	}
	calc := newCalculator()

	first, err := calc.CalculateLeaveBalance(emp, reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	second, err := calc.CalculateLeaveBalance(emp, reqs, date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBalance_ZeroAsOf_UsesClock(t *testing.T) {
	calc := newCalculator()
	calc.Now = func() time.Time { return time.Date(2024, time.July, 1, 15, 30, 0, 0, time.UTC) }

	bal, err := calc.CalculateLeaveBalance(employee(date(2024, time.January, 1)), nil, generic.TimePoint{})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", bal.AsOfDate.String())
	assertDays(t, 9, bal.TotalAccrued)
}

func TestBalance_RejectionReleasesReservation(t *testing.T) {
	// Status flips are reflected on the next call with no cached state.
	emp := employee(date(2024, time.January, 1))
	r := request(leave.TypeAnnual, leave.StatusPending, date(2024, time.May, 6), date(2024, time.May, 7))
	calc := newCalculator()

	bal, err := calc.CalculateLeaveBalance(emp, []leave.LeaveRequest{r}, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 7, bal.RemainingBalance)

	r.Status = leave.StatusRejected
	bal, err = calc.CalculateLeaveBalance(emp, []leave.LeaveRequest{r}, date(2024, time.July, 1))
	require.NoError(t, err)
	assertDays(t, 9, bal.RemainingBalance)
}

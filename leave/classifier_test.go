package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
)

func TestClassifier_SpanIsInclusive(t *testing.T) {
	c := leave.Classifier{Policy: leave.DefaultPolicy()}

	days, err := c.DeductibleDays(request(leave.TypeAnnual, leave.StatusApproved,
		date(2024, time.March, 10), date(2024, time.March, 12)))
	require.NoError(t, err)
	assertDays(t, 3, days)

	days, err = c.DeductibleDays(request(leave.TypeSick, leave.StatusPending,
		date(2024, time.June, 1), date(2024, time.June, 1)))
	require.NoError(t, err)
	assertDays(t, 1, days)
}

func TestClassifier_HalfDay_AlwaysHalf(t *testing.T) {
	// GIVEN: a halfday request whose dates span three days
	// THEN: it still counts as 0.5 day
	c := leave.Classifier{Policy: leave.DefaultPolicy()}

	days, err := c.DeductibleDays(request(leave.TypeHalfDay, leave.StatusApproved,
		date(2024, time.April, 15), date(2024, time.April, 17)))
	require.NoError(t, err)
	assertDays(t, 0.5, days)
	assert.True(t, c.IsFixed(leave.TypeHalfDay))
	assert.False(t, c.IsFixed(leave.TypeAnnual))
}

func TestClassifier_NonDeductibleTypesStillQuantified(t *testing.T) {
	// Reporting needs unpaid days even though they never touch the balance.
	c := leave.Classifier{Policy: leave.DefaultPolicy()}

	days, err := c.DeductibleDays(request(leave.TypeUnpaid, leave.StatusApproved,
		date(2024, time.August, 1), date(2024, time.August, 5)))
	require.NoError(t, err)
	assertDays(t, 5, days)
	assert.False(t, leave.DefaultPolicy().IsDeductible(leave.TypeUnpaid))
}

func TestClassifier_Multiplier(t *testing.T) {
	policy := leave.DefaultPolicy()
	policy.Rules[leave.TypeOther] = leave.TypeRule{Multiplier: multiplier("0.5")}
	c := leave.Classifier{Policy: policy}

	days, err := c.DeductibleDays(request(leave.TypeOther, leave.StatusApproved,
		date(2024, time.August, 1), date(2024, time.August, 4)))
	require.NoError(t, err)
	assertDays(t, 2, days)
}

func TestClassifier_ZeroMultiplier(t *testing.T) {
	// GIVEN: a type explicitly zeroed out by policy
	// THEN: it counts for nothing, rather than falling back to the span
	policy := leave.DefaultPolicy()
	policy.Rules[leave.TypeOther] = leave.TypeRule{Multiplier: multiplier("0")}
	c := leave.Classifier{Policy: policy}

	days, err := c.DeductibleDays(request(leave.TypeOther, leave.StatusApproved,
		date(2024, time.August, 1), date(2024, time.August, 4)))
	require.NoError(t, err)
	assertDays(t, 0, days)
}

func TestClassifier_Malformed(t *testing.T) {
	c := leave.Classifier{Policy: leave.DefaultPolicy()}

	cases := map[string]leave.LeaveRequest{
		"end before start": request(leave.TypeAnnual, leave.StatusApproved, date(2024, time.March, 12), date(2024, time.March, 10)),
		"unknown type":     request("sabbatical", leave.StatusApproved, date(2024, time.March, 10), date(2024, time.March, 10)),
		"unknown status":   request(leave.TypeAnnual, "cancelled", date(2024, time.March, 10), date(2024, time.March, 10)),
		"missing dates":    {ID: "req-x", Type: leave.TypeAnnual, Status: leave.StatusApproved},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.DeductibleDays(r)
			require.Error(t, err)
			assert.ErrorIs(t, err, leave.ErrMalformedLeaveRequest)
			var malformed *leave.MalformedLeaveRequestError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, r.ID, malformed.RequestID)
			assert.True(t, leave.IsClientError(err))
		})
	}
}

func TestParseLeaveTypeAndStatus(t *testing.T) {
	lt, err := leave.ParseLeaveType("halfday")
	require.NoError(t, err)
	assert.Equal(t, leave.TypeHalfDay, lt)

	_, err = leave.ParseLeaveType("Annual")
	assert.Error(t, err)

	st, err := leave.ParseStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, st)

	_, err = leave.ParseStatus("cancelled")
	assert.Error(t, err)
}

func TestDefaultPolicy_DeductibleTypes(t *testing.T) {
	assert.Equal(t,
		[]leave.LeaveType{leave.TypeAnnual, leave.TypeHalfDay, leave.TypePersonal, leave.TypeSick},
		leave.DefaultPolicy().DeductibleTypes())
}

package leave_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func employee(joined generic.TimePoint) leave.Employee {
	return leave.Employee{ID: "emp-1", Name: "Test User", JoinDate: joined}
}

var reqSeq int

func request(t leave.LeaveType, s leave.Status, start, end generic.TimePoint) leave.LeaveRequest {
	reqSeq++
	return leave.LeaveRequest{
		ID:         generic.RequestID(fmt.Sprintf("req-%03d", reqSeq)),
		EmployeeID: "emp-1",
		Type:       t,
		Status:     s,
		StartDate:  start,
		EndDate:    end,
	}
}

func assertDays(t *testing.T, want float64, got generic.Amount, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, generic.Days(want).Equal(got),
		append([]any{fmt.Sprintf("expected %v days, got %v", want, got.Value)}, msgAndArgs...)...)
}

func multiplier(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newCalculator() *leave.Calculator {
	return leave.NewCalculator(leave.DefaultPolicy(), nil)
}

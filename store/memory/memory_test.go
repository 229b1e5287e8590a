package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

func req(id string, start time.Time) leave.LeaveRequest {
	d := generic.FromTime(start)
	return leave.LeaveRequest{
		ID:         generic.RequestID(id),
		EmployeeID: "emp-1",
		Type:       leave.TypeAnnual,
		Status:     leave.StatusPending,
		StartDate:  d,
		EndDate:    d,
	}
}

func TestMemory_RequestsOrderedByStartDate(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()

	require.NoError(t, m.SaveLeaveRequest(ctx, req("b", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, m.SaveLeaveRequest(ctx, req("c", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))

	reqs, err := m.GetLeaveRequestsForEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, generic.RequestID("a"), reqs[0].ID)
	assert.Equal(t, generic.RequestID("b"), reqs[1].ID)
	assert.Equal(t, generic.RequestID("c"), reqs[2].ID)
}

func TestMemory_SaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()

	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))))

	all, err := m.ListLeaveRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2024-09-01", all[0].StartDate.String())
}

func TestMemory_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()
	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))

	require.NoError(t, m.TransitionStatus(ctx, "a", leave.StatusPending, leave.StatusApproved))
	reqs, _ := m.GetLeaveRequestsForEmployee(ctx, "emp-1")
	assert.Equal(t, leave.StatusApproved, reqs[0].Status)

	assert.ErrorIs(t, m.TransitionStatus(ctx, "a", leave.StatusPending, leave.StatusRejected), generic.ErrStatusConflict)
	reqs, _ = m.GetLeaveRequestsForEmployee(ctx, "emp-1")
	assert.Equal(t, leave.StatusApproved, reqs[0].Status, "refused transition changes nothing")

	assert.ErrorIs(t, m.TransitionStatus(ctx, "missing", leave.StatusPending, leave.StatusApproved), generic.ErrRequestNotFound)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()
	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))

	reqs, _ := m.GetLeaveRequestsForEmployee(ctx, "emp-1")
	reqs[0].Status = leave.StatusRejected

	again, _ := m.GetLeaveRequestsForEmployee(ctx, "emp-1")
	assert.Equal(t, leave.StatusPending, again[0].Status)
}

func TestMemory_Snapshot(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory()

	_, _, err := m.Snapshot(ctx, "emp-1")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	require.NoError(t, m.SaveEmployee(ctx, leave.Employee{ID: "emp-1", Name: "A", JoinDate: generic.NewTimePoint(2024, time.January, 1)}))
	require.NoError(t, m.SaveLeaveRequest(ctx, req("a", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))))

	emp, reqs, err := m.Snapshot(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "A", emp.Name)
	assert.Len(t, reqs, 1)
}

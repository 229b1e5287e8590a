// Package memory provides an in-memory leave.Source (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]leave.Employee
	requests  map[generic.EmployeeID][]leave.LeaveRequest
	byID      map[generic.RequestID]generic.EmployeeID
}

var (
	_ leave.SnapshotSource = (*Memory)(nil)
	_ leave.RequestLister  = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[generic.EmployeeID]leave.Employee),
		requests:  make(map[generic.EmployeeID][]leave.LeaveRequest),
		byID:      make(map[generic.RequestID]generic.EmployeeID),
	}
}

// SaveEmployee inserts or replaces an employee.
func (m *Memory) SaveEmployee(_ context.Context, emp leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

// SaveLeaveRequest inserts or replaces a request, keeping each employee's
// requests ordered by StartDate.
func (m *Memory) SaveLeaveRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.byID[r.ID]; ok {
		m.removeLocked(owner, r.ID)
	}

	reqs := m.requests[r.EmployeeID]
	// Binary search for insertion point
	i := sort.Search(len(reqs), func(i int) bool {
		return reqs[i].StartDate.After(r.StartDate)
	})
	reqs = append(reqs, leave.LeaveRequest{})
	copy(reqs[i+1:], reqs[i:])
	reqs[i] = r
	m.requests[r.EmployeeID] = reqs
	m.byID[r.ID] = r.EmployeeID
	return nil
}

// TransitionStatus moves a request from one status to another under the
// write lock. It returns generic.ErrStatusConflict if the request is no
// longer in from.
func (m *Memory) TransitionStatus(_ context.Context, id generic.RequestID, from, to leave.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.byID[id]
	if !ok {
		return generic.ErrRequestNotFound
	}
	reqs := m.requests[owner]
	for i := range reqs {
		if reqs[i].ID != id {
			continue
		}
		if reqs[i].Status != from {
			return generic.ErrStatusConflict
		}
		reqs[i].Status = to
		return nil
	}
	return generic.ErrRequestNotFound
}

func (m *Memory) removeLocked(owner generic.EmployeeID, id generic.RequestID) {
	reqs := m.requests[owner]
	for i := range reqs {
		if reqs[i].ID == id {
			m.requests[owner] = append(reqs[:i], reqs[i+1:]...)
			break
		}
	}
	delete(m.byID, id)
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeeLocked(id)
}

// ListEmployees returns all employees ordered by ID.
func (m *Memory) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]leave.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetLeaveRequest returns one request by ID.
func (m *Memory) GetLeaveRequest(_ context.Context, id generic.RequestID) (leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, ok := m.byID[id]
	if !ok {
		return leave.LeaveRequest{}, generic.ErrRequestNotFound
	}
	for _, r := range m.requests[owner] {
		if r.ID == id {
			return r, nil
		}
	}
	return leave.LeaveRequest{}, generic.ErrRequestNotFound
}

func (m *Memory) GetLeaveRequestsForEmployee(_ context.Context, id generic.EmployeeID) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestsLocked(id), nil
}

// Snapshot reads the employee and their requests under one read lock.
func (m *Memory) Snapshot(_ context.Context, id generic.EmployeeID) (leave.Employee, []leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, err := m.employeeLocked(id)
	if err != nil {
		return leave.Employee{}, nil, err
	}
	return emp, m.requestsLocked(id), nil
}

func (m *Memory) ListLeaveRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.LeaveRequest
	for _, reqs := range m.requests {
		result = append(result, reqs...)
	}
	return result, nil
}

func (m *Memory) employeeLocked(id generic.EmployeeID) (leave.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return leave.Employee{}, generic.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *Memory) requestsLocked(id generic.EmployeeID) []leave.LeaveRequest {
	result := make([]leave.LeaveRequest, len(m.requests[id]))
	copy(result, m.requests[id])
	return result
}

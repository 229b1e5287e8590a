package leave

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// SOURCE - Read-only collaborator interfaces
// =============================================================================

// Source supplies the employee and leave request records. Implementations
// return generic.ErrEmployeeNotFound for unknown employees.
type Source interface {
	GetEmployee(ctx context.Context, id generic.EmployeeID) (Employee, error)
	GetLeaveRequestsForEmployee(ctx context.Context, id generic.EmployeeID) ([]LeaveRequest, error)
}

// SnapshotSource extends Source with a consistent read of an employee and
// their requests (one transaction or one read-lock scope). Service prefers
// it when available.
type SnapshotSource interface {
	Source
	Snapshot(ctx context.Context, id generic.EmployeeID) (Employee, []LeaveRequest, error)
}

// RequestLister extends Source with organisation-wide listing.
type RequestLister interface {
	ListLeaveRequests(ctx context.Context) ([]LeaveRequest, error)
}

// =============================================================================
// SERVICE - Wires a Source to the engine
// =============================================================================

// Service reads a snapshot from the Source and runs the engine over it.
type Service struct {
	Source      Source
	Calculator  *Calculator
	Apportioner *Apportioner
}

func NewService(source Source, policy Policy, logger logrus.FieldLogger) *Service {
	return &Service{
		Source:      source,
		Calculator:  NewCalculator(policy, logger),
		Apportioner: NewApportioner(policy, logger),
	}
}

// Balance computes the balance of employee id as of asOf (zero = today).
func (s *Service) Balance(ctx context.Context, id generic.EmployeeID, asOf generic.TimePoint) (LeaveBalance, error) {
	emp, requests, err := s.snapshot(ctx, id)
	if err != nil {
		return LeaveBalance{}, err
	}
	return s.Calculator.CalculateLeaveBalance(emp, requests, asOf)
}

// Apportionment returns the monthly report for one employee.
func (s *Service) Apportionment(ctx context.Context, id generic.EmployeeID) (Apportionment, error) {
	_, requests, err := s.snapshot(ctx, id)
	if err != nil {
		return Apportionment{}, err
	}
	return s.Apportioner.ApportionByMonth(requests), nil
}

// Report computes the balance and the monthly report from one snapshot,
// so both views describe the same request history.
func (s *Service) Report(ctx context.Context, id generic.EmployeeID, asOf generic.TimePoint) (Employee, LeaveBalance, Apportionment, error) {
	emp, requests, err := s.snapshot(ctx, id)
	if err != nil {
		return Employee{}, LeaveBalance{}, Apportionment{}, err
	}
	bal, err := s.Calculator.CalculateLeaveBalance(emp, requests, asOf)
	if err != nil {
		return Employee{}, LeaveBalance{}, Apportionment{}, err
	}
	return emp, bal, s.Apportioner.ApportionByMonth(requests), nil
}

// OrganizationApportionment returns the monthly report across all employees.
func (s *Service) OrganizationApportionment(ctx context.Context) (Apportionment, error) {
	lister, ok := s.Source.(RequestLister)
	if !ok {
		return Apportionment{}, generic.ErrStoreRequired
	}
	requests, err := lister.ListLeaveRequests(ctx)
	if err != nil {
		return Apportionment{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return s.Apportioner.ApportionByMonth(requests), nil
}

func (s *Service) snapshot(ctx context.Context, id generic.EmployeeID) (Employee, []LeaveRequest, error) {
	if snap, ok := s.Source.(SnapshotSource); ok {
		return snap.Snapshot(ctx, id)
	}

	emp, err := s.Source.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, nil, err
	}
	requests, err := s.Source.GetLeaveRequestsForEmployee(ctx, id)
	if err != nil {
		return Employee{}, nil, fmt.Errorf("failed to load leave requests for %s: %w", id, err)
	}
	return emp, requests, nil
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Leave requests:
    LeaveRequestDTO, SubmitLeaveRequest, DecisionRequest

  Reports:
    leave.LeaveBalance and leave.Apportionment are returned as-is; their
    JSON tags are the report contract.

  Data quality:
    DataQualityDTO, DataQualityRunDTO

DATES:
  All dates are YYYY-MM-DD strings.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	JoinDate string `json:"join_date"`
}

// CreateEmployeeRequest is the request to create an employee.
// ID is optional; one is generated when empty.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinDate string `json:"join_date"`
}

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       string(e.ID),
		Name:     e.Name,
		Email:    e.Email,
		JoinDate: e.JoinDate.String(),
	}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// SubmitLeaveRequest is the request to submit leave. New requests are
// always pending.
type SubmitLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func toLeaveRequestDTO(r leave.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:         string(r.ID),
		EmployeeID: string(r.EmployeeID),
		Type:       string(r.Type),
		Status:     string(r.Status),
		StartDate:  r.StartDate.String(),
		EndDate:    r.EndDate.String(),
		Reason:     r.Reason,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// DATA QUALITY
// =============================================================================

// DataQualityDTO is the live scan result plus the last scheduled run.
type DataQualityDTO struct {
	RequestsScanned int                      `json:"requests_scanned"`
	Issues          []leave.DataQualityIssue `json:"issues"`
	LastRun         *DataQualityRunDTO       `json:"last_run,omitempty"`
}

// DataQualityRunDTO represents a recorded scheduled scan.
type DataQualityRunDTO struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	RequestsScanned int    `json:"requests_scanned"`
	IssuesFound     int    `json:"issues_found"`
	Error           string `json:"error,omitempty"`
	StartedAt       string `json:"started_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

func toDataQualityRunDTO(r *sqlite.DataQualityRun) *DataQualityRunDTO {
	if r == nil {
		return nil
	}
	dto := &DataQualityRunDTO{
		ID:              r.ID,
		Status:          r.Status,
		RequestsScanned: r.RequestsScanned,
		IssuesFound:     r.IssuesFound,
		Error:           r.Error,
		StartedAt:       r.StartedAt.UTC().Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

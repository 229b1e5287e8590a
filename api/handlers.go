/*
handlers.go - HTTP API handlers for the leave accounting engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, the leave request lifecycle (submit, approve,
  reject), and delegates every balance and report to leave.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Get employee details

  Leave requests:
    GET    /api/employees/{id}/leave-requests      List an employee's requests
    POST   /api/employees/{id}/leave-requests      Submit a request (pending)
    POST   /api/leave-requests/{id}/approve        Approve a pending request
    POST   /api/leave-requests/{id}/reject         Reject a pending request

  Reports:
    GET    /api/employees/{id}/balance?as_of=      Leave balance
    GET    /api/employees/{id}/apportionment       Monthly usage
    GET    /api/employees/{id}/report.pdf?as_of=   PDF leave report
    GET    /api/reports/monthly                    Monthly usage, all employees
    GET    /api/data-quality                       Malformed request scan
    GET    /api/policy                             Active policy

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call leave.Service (fresh snapshot per call, nothing cached)
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, malformed leave request
  - 404: Employee or leave request not found
  - 409: Duplicate employee, decision on a non-pending request (including
         one decided concurrently)
  - 422: As-of date before join date (InvalidJoinDate)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/report"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the API needs. store/sqlite and store/memory
// both satisfy it.
type Store interface {
	leave.SnapshotSource
	leave.RequestLister
	SaveEmployee(ctx context.Context, emp leave.Employee) error
	ListEmployees(ctx context.Context) ([]leave.Employee, error)
	SaveLeaveRequest(ctx context.Context, r leave.LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id generic.RequestID) (leave.LeaveRequest, error)
	TransitionStatus(ctx context.Context, id generic.RequestID, from, to leave.Status) error
}

// RunStore records scheduled data-quality runs.
type RunStore interface {
	SaveDataQualityRun(ctx context.Context, r sqlite.DataQualityRun) error
	LatestDataQualityRun(ctx context.Context) (*sqlite.DataQualityRun, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         Store
	Runs          RunStore // optional
	Policy        leave.Policy
	PolicyFactory *factory.PolicyFactory
	Logger        logrus.FieldLogger

	NewID func() string
	Now   func() time.Time
}

// NewHandler creates a new handler. If store also records data-quality
// runs it is used as the RunStore.
func NewHandler(store Store, policy leave.Policy, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &Handler{
		Store:         store,
		Policy:        policy,
		PolicyFactory: factory.NewPolicyFactory(),
		Logger:        logger,
		NewID:         uuid.NewString,
		Now:           time.Now,
	}
	if runs, ok := store.(RunStore); ok {
		h.Runs = runs
	}
	return h
}

// service builds a leave.Service whose warnings carry the HTTP request ID.
func (h *Handler) service(r *http.Request) *leave.Service {
	svc := leave.NewService(h.Store, h.Policy, h.logger(r))
	svc.Calculator.Now = h.Now
	return svc
}

func (h *Handler) logger(r *http.Request) logrus.FieldLogger {
	return h.Logger.WithField("http_request_id", middleware.GetReqID(r.Context()))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeEngineError(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	joinDate, err := generic.ParseDate(req.JoinDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "join_date must be YYYY-MM-DD", err)
		return
	}

	id := req.ID
	if id == "" {
		id = h.NewID()
	}
	if _, err := h.Store.GetEmployee(ctx, generic.EmployeeID(id)); err == nil {
		writeError(w, http.StatusConflict, "Employee already exists", nil)
		return
	} else if !generic.IsNotFound(err) {
		h.writeEngineError(w, r, "Failed to check employee", err)
		return
	}

	emp := leave.Employee{
		ID:       generic.EmployeeID(id),
		Name:     req.Name,
		Email:    req.Email,
		JoinDate: joinDate,
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		h.writeEngineError(w, r, "Failed to create employee", err)
		return
	}

	h.logger(r).WithField("employee_id", emp.ID).Info("employee created")
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		h.writeEngineError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaveRequests returns an employee's requests ordered by start date.
// GET /api/employees/{id}/leave-requests
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	_, requests, err := h.Store.Snapshot(r.Context(), employeeID(r))
	if err != nil {
		h.writeEngineError(w, r, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeaveRequest records a new pending request.
// POST /api/employees/{id}/leave-requests
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empID := employeeID(r)

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, empID); err != nil {
		h.writeEngineError(w, r, "Failed to get employee", err)
		return
	}

	leaveType, err := leave.ParseLeaveType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave type", err)
		return
	}
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD", err)
		return
	}
	end := start
	if req.EndDate != "" {
		if end, err = generic.ParseDate(req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD", err)
			return
		}
	}

	lr := leave.LeaveRequest{
		ID:         generic.RequestID(h.NewID()),
		EmployeeID: empID,
		Type:       leaveType,
		Status:     leave.StatusPending,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
		CreatedAt:  h.Now().UTC(),
	}
	if err := lr.Validate(); err != nil {
		h.writeEngineError(w, r, "Invalid leave request", err)
		return
	}

	if err := h.Store.SaveLeaveRequest(ctx, lr); err != nil {
		h.writeEngineError(w, r, "Failed to save leave request", err)
		return
	}

	h.logger(r).WithFields(logrus.Fields{
		"employee_id": empID,
		"request_id":  lr.ID,
		"type":        lr.Type,
	}).Info("leave request submitted")
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(lr))
}

// ApproveRequest approves a pending request.
// POST /api/leave-requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

// RejectRequest rejects a pending request. The days it reserved are
// released on the next balance call.
// POST /api/leave-requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status leave.Status) {
	ctx := r.Context()
	id := generic.RequestID(chi.URLParam(r, "id"))

	lr, err := h.Store.GetLeaveRequest(ctx, id)
	if err != nil {
		h.writeEngineError(w, r, "Failed to get leave request", err)
		return
	}
	if lr.Status != leave.StatusPending {
		writeError(w, http.StatusConflict, "Leave request is not pending", fmt.Errorf("status is %s", lr.Status))
		return
	}

	// Conditional on pending: a concurrent decision makes this a 409.
	if err := h.Store.TransitionStatus(ctx, id, leave.StatusPending, status); err != nil {
		h.writeEngineError(w, r, "Failed to update leave request", err)
		return
	}
	lr.Status = status

	h.logger(r).WithFields(logrus.Fields{
		"employee_id": lr.EmployeeID,
		"request_id":  lr.ID,
		"status":      status,
	}).Info("leave request decided")
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(lr))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetBalance returns the leave balance.
// GET /api/employees/{id}/balance?as_of=YYYY-MM-DD
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	bal, err := h.service(r).Balance(r.Context(), employeeID(r), asOf)
	if err != nil {
		h.writeEngineError(w, r, "Failed to calculate balance", err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

// GetApportionment returns one employee's monthly usage.
// GET /api/employees/{id}/apportionment
func (h *Handler) GetApportionment(w http.ResponseWriter, r *http.Request) {
	result, err := h.service(r).Apportionment(r.Context(), employeeID(r))
	if err != nil {
		h.writeEngineError(w, r, "Failed to apportion leave", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMonthlyReport returns monthly usage across all employees.
// GET /api/reports/monthly
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.service(r).OrganizationApportionment(r.Context())
	if err != nil {
		h.writeEngineError(w, r, "Failed to build monthly report", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetReportPDF renders the employee's leave report as PDF.
// GET /api/employees/{id}/report.pdf?as_of=YYYY-MM-DD
func (h *Handler) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}

	emp, bal, months, err := h.service(r).Report(r.Context(), employeeID(r), asOf)
	if err != nil {
		h.writeEngineError(w, r, "Failed to build report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fmt.Sprintf("leave-%s.pdf", emp.ID)))
	if err := report.RenderLeaveReport(w, emp, bal, months); err != nil {
		// Headers are already sent; all we can do is log.
		h.logger(r).WithError(err).WithField("employee_id", emp.ID).Error("failed to render leave report")
	}
}

// GetDataQuality scans all requests for malformed records.
// GET /api/data-quality
func (h *Handler) GetDataQuality(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scanned, issues, err := ScanDataQuality(ctx, h.Store, h.service(r).Apportioner)
	if err != nil {
		h.writeEngineError(w, r, "Failed to scan leave requests", err)
		return
	}

	dto := DataQualityDTO{RequestsScanned: scanned, Issues: issues}
	if h.Runs != nil {
		last, err := h.Runs.LatestDataQualityRun(ctx)
		if err != nil {
			h.writeEngineError(w, r, "Failed to load last data-quality run", err)
			return
		}
		dto.LastRun = toDataQualityRunDTO(last)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetPolicy returns the active policy in its JSON form.
// GET /api/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(h.Policy))
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) generic.EmployeeID {
	return generic.EmployeeID(chi.URLParam(r, "id"))
}

// parseAsOf reads the optional as_of query parameter. A missing value
// means today. It writes the 400 itself and reports false on bad input.
func parseAsOf(w http.ResponseWriter, r *http.Request) (generic.TimePoint, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return generic.TimePoint{}, true
	}
	asOf, err := generic.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err)
		return generic.TimePoint{}, false
	}
	return asOf, true
}

// writeEngineError maps domain errors to HTTP status codes.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrStatusConflict):
		writeError(w, http.StatusConflict, "Leave request is not pending", err)
	case errors.Is(err, leave.ErrInvalidJoinDate):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: message, Code: "invalid_join_date", Details: err.Error()})
	case errors.Is(err, leave.ErrMalformedLeaveRequest):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "malformed_leave_request", Details: err.Error()})
	default:
		h.logger(r).WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

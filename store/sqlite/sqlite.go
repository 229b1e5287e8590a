/*
Package sqlite provides a SQLite-backed leave.Source.

PURPOSE:
  Persists employees and leave requests so the engine can recompute
  balances and reports on demand. The engine itself never writes: the
  store is the system of record and every read is a fresh snapshot.

INTERFACES IMPLEMENTED:
  leave.Source:         Employee + request lookup
  leave.SnapshotSource: Consistent employee + requests read (one SQL tx)
  leave.RequestLister:  Organisation-wide request listing

KEY TABLES:
  employees:          Employee records (join_date as YYYY-MM-DD)
  leave_requests:     Leave requests (start/end as YYYY-MM-DD)
  data_quality_runs:  Results of scheduled data-quality scans

NO STORED BALANCES:
  There is deliberately no balances table. A status change on
  leave_requests is visible to the next balance call with nothing to
  invalidate.

RAW VALUES:
  leave_type and status are stored as text without CHECK constraints.
  Rows imported from elsewhere may carry values the engine does not know;
  they are read back as-is so the engine can report them as data-quality
  issues instead of the store failing the whole read.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, leave.DefaultPolicy(), logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - leave/service.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// Store implements leave.SnapshotSource and leave.RequestLister using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ leave.SnapshotSource = (*Store)(nil)
	_ leave.RequestLister  = (*Store)(nil)
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		join_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Balance and per-employee report (hot path)
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_start
		ON leave_requests(employee_id, start_date);

	-- Organisation-wide monthly report
	CREATE INDEX IF NOT EXISTS idx_leave_requests_start
		ON leave_requests(start_date);

	CREATE TABLE IF NOT EXISTS data_quality_runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		requests_scanned INTEGER NOT NULL DEFAULT 0,
		issues_found INTEGER NOT NULL DEFAULT 0,
		issues_json TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_data_quality_runs_started
		ON data_quality_runs(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, join_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			join_date = excluded.join_date
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email,
		formatDate(emp.JoinDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, join_date FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func getEmployee(ctx context.Context, q queryer, id generic.EmployeeID) (leave.Employee, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, email, join_date FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Employee{}, generic.ErrEmployeeNotFound
	}
	return emp, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (leave.Employee, error) {
	var emp leave.Employee
	var email sql.NullString
	var joinDate string
	if err := row.Scan(&emp.ID, &emp.Name, &email, &joinDate); err != nil {
		return leave.Employee{}, err
	}
	emp.Email = email.String
	emp.JoinDate = parseDate(joinDate)
	return emp, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SaveLeaveRequest inserts or replaces a leave request.
func (s *Store) SaveLeaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, status, start_date, end_date,
			reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			leave_type = excluded.leave_type,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, string(r.Type), string(r.Status),
		formatDate(r.StartDate), formatDate(r.EndDate), r.Reason,
		createdAt.UTC().Format(time.RFC3339), now,
	)
	return err
}

// TransitionStatus moves a request from one status to another in a single
// conditional UPDATE. It returns generic.ErrStatusConflict if the request
// exists but is no longer in from.
func (s *Store) TransitionStatus(ctx context.Context, id generic.RequestID, from, to leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE leave_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), time.Now().UTC().Format(time.RFC3339), id, string(from),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM leave_requests WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	return generic.ErrStatusConflict
}

// GetLeaveRequest retrieves a request by ID.
func (s *Store) GetLeaveRequest(ctx context.Context, id generic.RequestID) (leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRequests+" WHERE id = ?", id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.LeaveRequest{}, generic.ErrRequestNotFound
	}
	return r, err
}

// GetLeaveRequestsForEmployee returns an employee's requests by start date.
func (s *Store) GetLeaveRequestsForEmployee(ctx context.Context, id generic.EmployeeID) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, selectRequests+" WHERE employee_id = ? ORDER BY start_date, id", id)
}

// ListLeaveRequests returns every request by start date.
func (s *Store) ListLeaveRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, selectRequests+" ORDER BY start_date, id")
}

// Snapshot reads the employee and their requests in one read transaction.
func (s *Store) Snapshot(ctx context.Context, id generic.EmployeeID) (leave.Employee, []leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return leave.Employee{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	emp, err := getEmployee(ctx, tx, id)
	if err != nil {
		return leave.Employee{}, nil, err
	}
	requests, err := queryRequests(ctx, tx, selectRequests+" WHERE employee_id = ? ORDER BY start_date, id", id)
	if err != nil {
		return leave.Employee{}, nil, err
	}
	return emp, requests, tx.Commit()
}

const selectRequests = `
	SELECT id, employee_id, leave_type, status, start_date, end_date, reason, created_at
	FROM leave_requests`

func queryRequests(ctx context.Context, q queryer, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func scanRequest(row scanner) (leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	var leaveType, status, startDate, endDate, createdAt string
	var reason sql.NullString
	if err := row.Scan(&r.ID, &r.EmployeeID, &leaveType, &status, &startDate, &endDate, &reason, &createdAt); err != nil {
		return leave.LeaveRequest{}, err
	}
	r.Type = leave.LeaveType(leaveType)
	r.Status = leave.Status(status)
	r.StartDate = parseDate(startDate)
	r.EndDate = parseDate(endDate)
	r.Reason = reason.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

// =============================================================================
// DATA QUALITY RUNS
// =============================================================================

// DataQualityRun records one scheduled scan for malformed requests.
type DataQualityRun struct {
	ID              string
	Status          string // running, completed, failed
	RequestsScanned int
	IssuesFound     int
	IssuesJSON      string
	Error           string
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// SaveDataQualityRun inserts or updates a run.
func (s *Store) SaveDataQualityRun(ctx context.Context, r DataQualityRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO data_quality_runs (id, status, requests_scanned, issues_found, issues_json,
			error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			requests_scanned = excluded.requests_scanned,
			issues_found = excluded.issues_found,
			issues_json = excluded.issues_json,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		c := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &c
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Status, r.RequestsScanned, r.IssuesFound, r.IssuesJSON, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// LatestDataQualityRun returns the most recently started run, or nil if
// no run has been recorded.
func (s *Store) LatestDataQualityRun(ctx context.Context) (*DataQualityRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, status, requests_scanned, issues_found, issues_json, error, started_at, completed_at
		FROM data_quality_runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	var r DataQualityRun
	var issuesJSON, runErr, completedAt sql.NullString
	var startedAt string
	err := s.db.QueryRowContext(ctx, query).Scan(
		&r.ID, &r.Status, &r.RequestsScanned, &r.IssuesFound, &issuesJSON, &runErr, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.IssuesJSON = issuesJSON.String
	r.Error = runErr.String
	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		r.CompletedAt = &t
	}
	return &r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(tp generic.TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.String()
}

// parseDate returns the zero TimePoint for empty or unparseable text; the
// engine reports such requests as malformed.
func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

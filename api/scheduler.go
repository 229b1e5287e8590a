/*
scheduler.go - Scheduled data-quality scan

PURPOSE:
  Periodically runs every stored leave request through the apportioner
  and logs each request it had to exclude (end before start, unknown type,
  unknown status, missing dates). Balance calls skip such records quietly
  per request; this job makes them visible to operators in one place.

DESIGN:
  - robfig/cron drives the schedule (DATA_QUALITY_SCHEDULE, default @daily)
  - Each run is recorded in data_quality_runs when a RunStore is set
  - Runs never overlap: cron.SkipIfStillRunning
  - An empty schedule disables the job

USAGE:
  scheduler := NewDataQualityScheduler(store, policy, logger)
  scheduler.Schedule = cfg.DataQualitySchedule
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetDataQuality (on-demand scan)
  - leave/apportion.go: DataQualityIssue
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// DataQualityScheduler scans leave requests for malformed records on a
// cron schedule.
type DataQualityScheduler struct {
	Source   leave.RequestLister
	Runs     RunStore // optional
	Schedule string
	Timeout  time.Duration

	apportioner *leave.Apportioner
	logger      logrus.FieldLogger
	newID       func() string
	now         func() time.Time

	cron *cron.Cron
	mu   sync.Mutex
}

// NewDataQualityScheduler creates a scheduler. If source also records
// data-quality runs it is used as the RunStore.
func NewDataQualityScheduler(source leave.RequestLister, policy leave.Policy, logger logrus.FieldLogger) *DataQualityScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "data_quality")

	s := &DataQualityScheduler{
		Source:      source,
		Schedule:    "@daily",
		Timeout:     5 * time.Minute,
		apportioner: leave.NewApportioner(policy, logger),
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	if runs, ok := source.(RunStore); ok {
		s.Runs = runs
	}
	return s
}

// Start begins the scheduler.
func (s *DataQualityScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Schedule == "" {
		s.logger.Info("scheduler disabled, not starting")
		return nil
	}
	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})))
	if _, err := c.AddFunc(s.Schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid data-quality schedule %q: %w", s.Schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.WithField("schedule", s.Schedule).Info("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (s *DataQualityScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
		s.logger.Info("scheduler stopped")
	}
}

func (s *DataQualityScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.WithError(err).Error("data-quality scan failed")
	}
}

// RunOnce scans all requests now, logs each issue and records the run.
func (s *DataQualityScheduler) RunOnce(ctx context.Context) (sqlite.DataQualityRun, error) {
	run := sqlite.DataQualityRun{
		ID:        s.newID(),
		Status:    "running",
		StartedAt: s.now().UTC(),
	}
	s.record(ctx, run)

	scanned, issues, err := ScanDataQuality(ctx, s.Source, s.apportioner)
	completed := s.now().UTC()
	run.CompletedAt = &completed

	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		s.record(ctx, run)
		return run, err
	}

	run.Status = "completed"
	run.RequestsScanned = scanned
	run.IssuesFound = len(issues)
	if data, err := json.Marshal(issues); err == nil {
		run.IssuesJSON = string(data)
	}
	s.record(ctx, run)

	entry := s.logger.WithFields(logrus.Fields{
		"run_id":           run.ID,
		"requests_scanned": scanned,
		"issues_found":     len(issues),
	})
	if len(issues) > 0 {
		entry.Warn("data-quality scan found malformed leave requests")
	} else {
		entry.Info("data-quality scan clean")
	}
	return run, nil
}

func (s *DataQualityScheduler) record(ctx context.Context, run sqlite.DataQualityRun) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.SaveDataQualityRun(ctx, run); err != nil {
		s.logger.WithError(err).WithField("run_id", run.ID).Error("failed to record data-quality run")
	}
}

// ScanDataQuality apportions every stored request and returns how many
// were scanned and which were excluded. The apportioner logs each
// excluded request at WARN.
func ScanDataQuality(ctx context.Context, source leave.RequestLister, apportioner *leave.Apportioner) (int, []leave.DataQualityIssue, error) {
	requests, err := source.ListLeaveRequests(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	result := apportioner.ApportionByMonth(requests)
	return len(requests), result.Issues, nil
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithFields(kv(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.WithFields(kv(keysAndValues)).WithError(err).Error(msg)
}

func kv(keysAndValues []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

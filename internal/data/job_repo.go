// Package data provides the PostgreSQL-backed repositories behind the
// booking core's storage ports.
package data

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// Shared sentinel errors for data-layer repositories.
var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobIDRequired is returned when a job id is missing from a request.
	ErrJobIDRequired = errors.New("job id is required")
)

// TimeProvider provides the current time; swap in a fixed provider in tests.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using real system time.
type RealTimeProvider struct{}

// Now returns the current system time.
func (r *RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider implements TimeProvider with a fixed time for testing.
type FixedTimeProvider struct {
	fixed time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider pinned to the given time.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixed: t}
}

// Now returns the fixed time.
func (f *FixedTimeProvider) Now() time.Time { return f.fixed }

// Advance moves the fixed time forward by d.
func (f *FixedTimeProvider) Advance(d time.Duration) { f.fixed = f.fixed.Add(d) }

// RepoConfig holds configuration options shared by the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for booking jobs.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  status,
  customer_id,
  translator_id,
  from_language,
  to_language,
  certification,
  town,
  on_site,
  duration_minutes,
  scheduled_at,
  session_time,
  flagged,
  manually_handled,
  by_admin,
  admin_comments,
  contact_email,
  reference,
  created_at,
  updated_at
`

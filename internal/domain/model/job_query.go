package model

import "time"

// JobListOptions groups parameters for the admin job listing with optional filters.
type JobListOptions struct {
	Status        *JobStatus // Optional filter by lifecycle state
	CustomerID    *string    // Optional filter by customer
	TranslatorID  *string    // Optional filter by assigned translator
	FromLanguage  *string    // Optional filter by source language
	Flagged       *bool      // Optional filter by the flagged admin bit
	ScheduledFrom *time.Time // Optional lower bound on scheduled time
	ScheduledTo   *time.Time // Optional upper bound on scheduled time
	// Expression is an optional JMESPath expression evaluated against each
	// serialized job; jobs for which it yields a falsy result are dropped.
	// Used for ad-hoc admin queries the typed filters do not cover.
	Expression string
	SortBy     string // Sort field: "scheduled_at", "created_at", "status" (default: "scheduled_at")
	SortOrder  string // Sort order: "asc", "desc" (default: "asc")
	Limit      int
	Offset     int
}

// JobHistoryOptions groups parameters for listing a user's past jobs.
type JobHistoryOptions struct {
	UserID string
	Kind   UserKind
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

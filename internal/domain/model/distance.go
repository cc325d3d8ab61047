package model

import (
	"errors"
	"strings"
	"time"
)

// DistanceRecord holds per-job travel telemetry. It is owned by the job but
// corrected independently of the job's lifecycle state.
type DistanceRecord struct {
	JobID       string    `json:"job_id"             db:"job_id"`
	DistanceKM  *float64  `json:"distance,omitempty" db:"distance_km"`
	TimeMinutes *float64  `json:"time,omitempty"     db:"time_minutes"`
	UpdatedAt   time.Time `json:"updated_at"        db:"updated_at"`
}

// DistanceFeedRequest is the validated payload of an admin distance/time
// correction. Distance/time updates and admin-field updates are gated
// independently: a request may carry either, both, or neither.
//
// Flagged, ManuallyHandled and ByAdmin are pointers because the caller must
// supply them explicitly; an absent boolean is a validation error, not false.
type DistanceFeedRequest struct {
	JobID           string   `json:"jobid"`
	DistanceKM      *float64 `json:"distance,omitempty"`
	TimeMinutes     *float64 `json:"time,omitempty"`
	SessionTime     *int     `json:"session_time,omitempty"`
	Flagged         *bool    `json:"flagged"`
	ManuallyHandled *bool    `json:"manually_handled"`
	ByAdmin         *bool    `json:"by_admin"`
	AdminComments   *string  `json:"admincomment,omitempty"`
}

// Validate enforces the feed contract: job id and the three booleans are
// required, and admin comments are required exactly when flagged is true.
func (r *DistanceFeedRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("jobid is required")
	}
	if r.Flagged == nil {
		return errors.New("flagged is required")
	}
	if r.ManuallyHandled == nil {
		return errors.New("manually_handled is required")
	}
	if r.ByAdmin == nil {
		return errors.New("by_admin is required")
	}
	if *r.Flagged && (r.AdminComments == nil || strings.TrimSpace(*r.AdminComments) == "") {
		return errors.New("admincomment is required when flagged is true")
	}
	if r.DistanceKM != nil && *r.DistanceKM < 0 {
		return errors.New("distance must not be negative")
	}
	if r.TimeMinutes != nil && *r.TimeMinutes < 0 {
		return errors.New("time must not be negative")
	}
	if r.SessionTime != nil && *r.SessionTime < 0 {
		return errors.New("session_time must not be negative")
	}
	return nil
}

// HasDistanceUpdate reports whether the request touches the distance record.
func (r *DistanceFeedRequest) HasDistanceUpdate() bool {
	return r.DistanceKM != nil || r.TimeMinutes != nil
}

// HasAdminUpdate reports whether the request touches the job's admin fields.
// The gate mirrors the feed contract: at least one of comments, session time,
// or the three flags must carry a meaningful value.
func (r *DistanceFeedRequest) HasAdminUpdate() bool {
	if r.AdminComments != nil && strings.TrimSpace(*r.AdminComments) != "" {
		return true
	}
	if r.SessionTime != nil && *r.SessionTime != 0 {
		return true
	}
	return (r.Flagged != nil && *r.Flagged) ||
		(r.ManuallyHandled != nil && *r.ManuallyHandled) ||
		(r.ByAdmin != nil && *r.ByAdmin)
}

// Package model defines the core data types and structures used throughout the booking system.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current lifecycle state of a booking job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusPending indicates a job is open and waiting for a translator to claim it.
	JobStatusPending JobStatus = "pending"
	// JobStatusAssigned indicates a translator has won the claim and is booked.
	JobStatusAssigned JobStatus = "assigned"
	// JobStatusInProgress indicates the interpretation session has started.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusCompleted indicates the session finished normally.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCancelled indicates the job was cancelled by either party or an admin.
	JobStatusCancelled JobStatus = "cancelled"
	// JobStatusNoShow indicates the customer never called in for the session.
	JobStatusNoShow JobStatus = "no_show"
)

// Valid returns true if the JobStatus is a known state.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusAssigned, JobStatusInProgress,
		JobStatusCompleted, JobStatusCancelled, JobStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether the status is an end state of the lifecycle.
// Cancelled is terminal only until a reopen moves the job back to pending.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled || s == JobStatusNoShow
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus to allow env and query parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", v)
	}
	*s = v
	return nil
}

// Job represents a single bookable interpretation task and its lifecycle state.
// The assigned translator reference is non-nil exactly when the status is
// assigned, in_progress, or completed.
type Job struct {
	ID              string             `json:"id"                         db:"id"`
	Status          JobStatus          `json:"status"                     db:"status"`
	CustomerID      string             `json:"customer_id"                db:"customer_id"`
	TranslatorID    *string            `json:"translator_id,omitempty"    db:"translator_id"`
	FromLanguage    string             `json:"from_language"              db:"from_language"`
	ToLanguage      string             `json:"to_language"                db:"to_language"`
	Certification   CertificationLevel `json:"certification"              db:"certification"`
	Town            string             `json:"town"                       db:"town"`
	OnSite          bool               `json:"on_site"                    db:"on_site"`
	DurationMinutes int                `json:"duration_minutes"           db:"duration_minutes"`
	ScheduledAt     time.Time          `json:"scheduled_at"               db:"scheduled_at"`
	SessionTime     *int               `json:"session_time,omitempty"     db:"session_time"`
	Flagged         bool               `json:"flagged"                    db:"flagged"`
	ManuallyHandled bool               `json:"manually_handled"           db:"manually_handled"`
	ByAdmin         bool               `json:"by_admin"                   db:"by_admin"`
	AdminComments   *string            `json:"admin_comments,omitempty"   db:"admin_comments"`
	ContactEmail    *string            `json:"contact_email,omitempty"    db:"contact_email"`
	Reference       *string            `json:"reference,omitempty"        db:"reference"`
	CreatedAt       time.Time          `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"                 db:"updated_at"`
}

// JobWithTranslator pairs a job with the resolved translator identity, when one is assigned.
type JobWithTranslator struct {
	Job        *Job        `json:"job"`
	Translator *Translator `json:"translator,omitempty"`
}

// CreateJobRequest represents a request to create a new booking job.
type CreateJobRequest struct {
	CustomerID      string             `json:"customer_id"`
	FromLanguage    string             `json:"from_language"`
	ToLanguage      string             `json:"to_language"`
	Certification   CertificationLevel `json:"certification,omitempty"`
	Town            string             `json:"town,omitempty"`
	OnSite          bool               `json:"on_site,omitempty"`
	DurationMinutes int                `json:"duration_minutes"`
	ScheduledAt     time.Time          `json:"scheduled_at"`
	Reference       *string            `json:"reference,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("customer id is required")
	}
	if strings.TrimSpace(r.FromLanguage) == "" || strings.TrimSpace(r.ToLanguage) == "" {
		return errors.New("language pair is required")
	}
	if strings.EqualFold(r.FromLanguage, r.ToLanguage) {
		return errors.New("from and to languages must differ")
	}
	if !r.Certification.Valid() {
		return errors.New("invalid certification level")
	}
	if r.DurationMinutes <= 0 {
		return errors.New("duration must be positive")
	}
	if r.ScheduledAt.IsZero() {
		return errors.New("scheduled time is required")
	}
	if r.OnSite && strings.TrimSpace(r.Town) == "" {
		return errors.New("town is required for on-site jobs")
	}
	return nil
}

// UpdateJobRequest carries the booking fields a caller may change on an
// existing job. Nil fields are left untouched.
type UpdateJobRequest struct {
	FromLanguage    *string             `json:"from_language,omitempty"`
	ToLanguage      *string             `json:"to_language,omitempty"`
	Certification   *CertificationLevel `json:"certification,omitempty"`
	Town            *string             `json:"town,omitempty"`
	OnSite          *bool               `json:"on_site,omitempty"`
	DurationMinutes *int                `json:"duration_minutes,omitempty"`
	ScheduledAt     *time.Time          `json:"scheduled_at,omitempty"`
	Reference       *string             `json:"reference,omitempty"`
}

// Empty reports whether the request changes nothing.
func (r *UpdateJobRequest) Empty() bool {
	return r.FromLanguage == nil && r.ToLanguage == nil && r.Certification == nil &&
		r.Town == nil && r.OnSite == nil && r.DurationMinutes == nil &&
		r.ScheduledAt == nil && r.Reference == nil
}

// Validate validates the UpdateJobRequest fields that are present.
func (r *UpdateJobRequest) Validate() error {
	if r.Certification != nil && !r.Certification.Valid() {
		return errors.New("invalid certification level")
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return errors.New("duration must be positive")
	}
	if r.ScheduledAt != nil && r.ScheduledAt.IsZero() {
		return errors.New("scheduled time must not be zero")
	}
	return nil
}

// StoreJobEmailRequest sets the booking contact email and reference on a job.
type StoreJobEmailRequest struct {
	ContactEmail string  `json:"contact_email"`
	Reference    *string `json:"reference,omitempty"`
}

// Validate validates the StoreJobEmailRequest fields.
func (r *StoreJobEmailRequest) Validate() error {
	email := strings.TrimSpace(r.ContactEmail)
	if email == "" {
		return errors.New("contact email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return errors.New("contact email is malformed")
	}
	return nil
}

// ClaimOutcome is the result of a translator's attempt to claim a pending job.
type ClaimOutcome string

const (
	// ClaimWon means the caller is now the assigned translator.
	ClaimWon ClaimOutcome = "won"
	// ClaimLost means another translator won a concurrent claim on the same job.
	ClaimLost ClaimOutcome = "lost"
	// ClaimNotEligible means the translator does not satisfy the job's requirements.
	ClaimNotEligible ClaimOutcome = "not_eligible"
	// ClaimAlreadyResolved means the job was no longer pending when the claim arrived.
	ClaimAlreadyResolved ClaimOutcome = "already_resolved"
)

// ClaimResult pairs the arbitration outcome with the job's current state.
type ClaimResult struct {
	Outcome ClaimOutcome `json:"outcome"`
	Job     *Job         `json:"job,omitempty"`
}

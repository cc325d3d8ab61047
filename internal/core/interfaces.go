// Package core defines the ports of the booking system: the repository and
// collaborator interfaces the service layer depends on. Services depend on
// these interfaces, never on a concrete persistence technology.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/interpretek/booking-core/internal/domain/model"
)

// TransitionParams describes an atomic conditional lifecycle transition.
// The update succeeds only if the job's current status is in From; the
// repository must apply the check-and-set in a single statement so two
// racing callers cannot both observe success.
type TransitionParams struct {
	JobID string
	From  []model.JobStatus
	To    model.JobStatus
	// ClearTranslator removes the assignment as part of the transition.
	ClearTranslator bool
	// SessionTime, when non-nil, is recorded on the job (end transition).
	SessionTime *int
}

// AdminFieldUpdate carries the admin-correction fields applied by the
// distance feed. Nil fields are left untouched.
type AdminFieldUpdate struct {
	AdminComments   *string
	SessionTime     *int
	Flagged         *bool
	ManuallyHandled *bool
	ByAdmin         *bool
}

// Empty reports whether the update changes nothing.
func (u AdminFieldUpdate) Empty() bool {
	return u.AdminComments == nil && u.SessionTime == nil &&
		u.Flagged == nil && u.ManuallyHandled == nil && u.ByAdmin == nil
}

// JobRepository defines the interface for job data operations.
//
// TryAssign and Transition are the arbitration primitives: both are atomic
// conditional updates keyed by job id, so concurrent claims on different
// jobs proceed in parallel while claims on the same job serialize at the
// storage layer.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Job, error)
	ListByTranslator(ctx context.Context, translatorID string) ([]*model.Job, error)
	// ListPending returns all pending jobs ordered by scheduled time ascending.
	ListPending(ctx context.Context) ([]*model.Job, error)
	List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	History(ctx context.Context, opts model.JobHistoryOptions) ([]*model.Job, error)
	// TryAssign sets the translator and moves pending → assigned in one
	// conditional update. ok is false when the job was not pending or
	// already had a translator; the job is returned in its current state
	// either way.
	TryAssign(ctx context.Context, jobID, translatorID string) (job *model.Job, ok bool, err error)
	// Transition applies a conditional lifecycle transition. ok is false
	// when the job's current status was outside params.From; no mutation
	// happens in that case.
	Transition(ctx context.Context, params TransitionParams) (job *model.Job, ok bool, err error)
	UpdateFields(ctx context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error)
	SetContactEmail(ctx context.Context, id string, req *model.StoreJobEmailRequest) (*model.Job, error)
	// UpdateAdminFields applies the distance-feed admin correction within
	// the given transaction so audit entries commit atomically with it.
	UpdateAdminFields(ctx context.Context, tx *sql.Tx, id string, update AdminFieldUpdate) (*model.Job, error)
	// ExpireStalePending cancels pending jobs whose scheduled time passed
	// the cutoff, in batches. Returns the number of jobs expired.
	ExpireStalePending(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// DistanceRepository defines the interface for per-job distance telemetry.
type DistanceRepository interface {
	// Upsert writes distance and/or travel time for a job, creating the
	// record if absent. Nil fields overwrite with NULL only when the other
	// is present, matching the feed's unconditional-apply semantics.
	Upsert(ctx context.Context, jobID string, distanceKM, timeMinutes *float64) error
	GetByJobID(ctx context.Context, jobID string) (*model.DistanceRecord, error)
}

// AuditRepository defines the append-only audit trail for admin edits.
type AuditRepository interface {
	Append(ctx context.Context, tx *sql.Tx, entry *model.AuditEntry) error
	ListByJob(ctx context.Context, jobID string) ([]*model.AuditEntry, error)
}

// NotificationEventRepository records notification delivery outcomes for audit.
type NotificationEventRepository interface {
	Record(ctx context.Context, event *model.NotificationEvent) error
	ListByJob(ctx context.Context, jobID string) ([]*model.NotificationEvent, error)
}

// UserDirectory resolves customer and translator identities. It is an
// external collaborator; an implementation may call out to the identity
// platform or serve a cached snapshot.
type UserDirectory interface {
	GetTranslator(ctx context.Context, id string) (*model.Translator, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	// KindOf reports whether the id names a customer or a translator.
	KindOf(ctx context.Context, id string) (model.UserKind, error)
	// ListTranslators returns all active translators for eligibility fan-out.
	ListTranslators(ctx context.Context) ([]*model.Translator, error)
}

// CacheRepository defines the interface for caching operations, used for
// notification throttling and job-availability publication.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	// Used for notification throttling.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Publish broadcasts a payload on a channel for interested listeners
	// (job-availability announcements).
	Publish(ctx context.Context, channel string, payload []byte) error

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

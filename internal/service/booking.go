package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/booking"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
	"github.com/interpretek/booking-core/internal/notify"
	"github.com/interpretek/booking-core/internal/observability/metrics"
	"github.com/interpretek/booking-core/internal/observability/statsd"
)

// BookingServiceOptions groups dependencies for BookingService.
type BookingServiceOptions struct {
	Repo       core.JobRepository       // Required: job repository
	Directory  core.UserDirectory       // Required: identity resolution
	Dispatcher *NotificationDispatcher  // Optional: lifecycle notifications
	Evaluator  notify.JMESPathEvaluator // Optional: admin list expression filter
	Logger     *slog.Logger             // Optional: structured logger
	Metrics    statsd.Sink              // Optional: transition metrics
}

// BookingService orchestrates the job lifecycle: creation, updates, lifecycle
// transitions and the listings built on top of them.
//
// Every transition goes through the repository's atomic conditional update, so
// a guard violation surfaces as InvalidTransition without mutating the job
// even when two callers race.
type BookingService struct {
	repo       core.JobRepository
	directory  core.UserDirectory
	dispatcher *NotificationDispatcher
	evaluator  notify.JMESPathEvaluator
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewBookingService constructs a new BookingService.
func NewBookingService(opts BookingServiceOptions) (*BookingService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("UserDirectory is required")
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = notify.LibEvaluator{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "booking_service")
	}

	return &BookingService{
		repo:       opts.Repo,
		directory:  opts.Directory,
		dispatcher: opts.Dispatcher,
		evaluator:  evaluator,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewBookingService constructs a new BookingService and panics on error.
func MustNewBookingService(opts BookingServiceOptions) *BookingService {
	svc, err := NewBookingService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create BookingService: %v", err))
	}
	return svc
}

// CreateJob validates and persists a new booking, then announces it to
// eligible translators. The announcement is best effort and runs after the
// row is committed.
func (s *BookingService) CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job created",
			"id", job.ID,
			"customer_id", job.CustomerID,
			"scheduled_at", job.ScheduledAt,
		)
	}

	if s.dispatcher != nil {
		s.dispatcher.AnnouncePending(ctx, job)
	}
	return job, nil
}

// GetJob returns a job together with its assigned translator, when the
// directory can resolve one. Directory failures degrade to the bare job.
func (s *BookingService) GetJob(ctx context.Context, jobID string) (*model.JobWithTranslator, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	out := &model.JobWithTranslator{Job: job}
	if job.TranslatorID != nil && *job.TranslatorID != "" {
		tr, err := s.directory.GetTranslator(ctx, *job.TranslatorID)
		if err != nil {
			s.logWarn(ctx, "resolve assigned translator", err, "job_id", job.ID)
		} else {
			out.Translator = tr
		}
	}
	return out, nil
}

// ListJobsForUser returns the jobs visible to a directory identity: a
// customer sees their bookings, a translator the jobs assigned to them.
func (s *BookingService) ListJobsForUser(ctx context.Context, userID string) ([]*model.Job, error) {
	kind, err := s.directory.KindOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user kind: %w", err)
	}

	switch kind {
	case model.UserKindCustomer:
		return s.repo.ListByCustomer(ctx, userID)
	case model.UserKindTranslator:
		return s.repo.ListByTranslator(ctx, userID)
	default:
		return nil, apperrors.Validationf("unknown user kind %q", kind)
	}
}

// ListAllJobs is the admin-scoped listing. Typed filters are applied in the
// query; an optional JMESPath expression is evaluated per job afterwards for
// ad-hoc criteria the typed filters cannot express.
func (s *BookingService) ListAllJobs(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	if err := s.evaluator.Validate(opts.Expression); err != nil {
		return nil, apperrors.ValidationField("expression", err.Error())
	}

	jobs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if opts.Expression == "" {
		return jobs, nil
	}

	filtered := make([]*model.Job, 0, len(jobs))
	for _, job := range jobs {
		match, err := s.matchExpression(opts.Expression, job)
		if err != nil {
			return nil, apperrors.ValidationField("expression", err.Error())
		}
		if match {
			filtered = append(filtered, job)
		}
	}
	return filtered, nil
}

// GetJobHistory returns the closed jobs for a user, newest first, resolving
// the ownership column (customer vs translator) through the directory when
// the caller did not set it.
func (s *BookingService) GetJobHistory(ctx context.Context, opts model.JobHistoryOptions) ([]*model.Job, error) {
	if opts.UserID == "" {
		return nil, apperrors.ValidationField("user_id", "user id is required")
	}
	if opts.Kind == "" {
		kind, err := s.directory.KindOf(ctx, opts.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve user kind: %w", err)
		}
		opts.Kind = kind
	}
	return s.repo.History(ctx, opts)
}

// UpdateJob applies a partial update to the booking fields of a job.
func (s *BookingService) UpdateJob(ctx context.Context, jobID string, req *model.UpdateJobRequest, actor string) (*model.Job, error) {
	if req == nil || req.Empty() {
		return nil, apperrors.Validation("no fields to update")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.repo.UpdateFields(ctx, jobID, req)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job updated", "id", job.ID, "actor", actor)
	}
	return job, nil
}

// StoreJobEmail records the booking contact email and reference on a job and
// confirms to the customer.
func (s *BookingService) StoreJobEmail(ctx context.Context, jobID string, req *model.StoreJobEmailRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("email request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.repo.SetContactEmail(ctx, jobID, req)
	if err != nil {
		return nil, fmt.Errorf("store job email: %w", err)
	}

	if s.dispatcher != nil {
		s.dispatcher.NotifyCustomer(ctx, job, notify.EventJobCreated, "booking confirmation sent to "+req.ContactEmail)
	}
	return job, nil
}

// CancelJob moves a job to cancelled, clears the assignment and informs both
// parties.
func (s *BookingService) CancelJob(ctx context.Context, jobID, actor string) (*model.Job, error) {
	// Capture the assignment before it is cleared so the translator can
	// still be informed. The read is advisory; the transition itself is
	// the atomic guard.
	var assignedTranslator string
	if prev, err := s.repo.GetByID(ctx, jobID); err == nil && prev.TranslatorID != nil {
		assignedTranslator = *prev.TranslatorID
	}

	job, err := s.transition(ctx, jobID, booking.TransitionCancel, nil)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job cancelled", "id", job.ID, "actor", actor)
	}

	if s.dispatcher != nil {
		s.dispatcher.NotifyCustomer(ctx, job, notify.EventJobCancelled, "")
		if assignedTranslator != "" {
			s.dispatcher.NotifyTranslator(ctx, job, assignedTranslator, notify.EventJobCancelled, "")
		}
	}
	return job, nil
}

// StartJob moves an assigned job to in_progress when the session begins.
func (s *BookingService) StartJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.transition(ctx, jobID, booking.TransitionStart, nil)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyCustomer(ctx, job, notify.EventJobStarted, "")
	}
	return job, nil
}

// EndJob completes a job, recording the session length when supplied.
func (s *BookingService) EndJob(ctx context.Context, jobID string, sessionTime *int) (*model.Job, error) {
	if sessionTime != nil && *sessionTime < 0 {
		return nil, apperrors.ValidationField("session_time", "session time must not be negative")
	}
	job, err := s.transition(ctx, jobID, booking.TransitionEnd, sessionTime)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.NotifyCustomer(ctx, job, notify.EventJobCompleted, "")
	}
	return job, nil
}

// MarkNoShow records that the customer never called in. The assignment is
// cleared and the event is surfaced for operators through the log and the
// metric stream.
func (s *BookingService) MarkNoShow(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.transition(ctx, jobID, booking.TransitionNoShow, nil)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "customer no-show recorded", "id", job.ID, "scheduled_at", job.ScheduledAt)
	}
	return job, nil
}

// ReopenJob returns a cancelled job to the pending pool and re-announces it.
func (s *BookingService) ReopenJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.transition(ctx, jobID, booking.TransitionReopen, nil)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.AnnouncePending(ctx, job)
	}
	return job, nil
}

// transition runs one lifecycle transition as an atomic conditional update.
func (s *BookingService) transition(ctx context.Context, jobID string, t booking.Transition, sessionTime *int) (*model.Job, error) {
	job, ok, err := s.repo.Transition(ctx, core.TransitionParams{
		JobID:           jobID,
		From:            booking.FromStates(t),
		To:              booking.Target(t),
		ClearTranslator: booking.ClearsTranslator(t),
		SessionTime:     sessionTime,
	})
	if err != nil {
		metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
			Transition: string(t), Result: metrics.ResultError, Err: err,
		})
		return nil, fmt.Errorf("%s job: %w", t, err)
	}
	if !ok {
		metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
			Transition: string(t), Result: metrics.ResultNoop,
		})
		return nil, apperrors.InvalidTransitionf("%s not allowed from %s", t, job.Status)
	}

	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Transition: string(t), Result: metrics.ResultSuccess,
	})
	return job, nil
}

// matchExpression evaluates the admin filter expression against one job.
// A truthy result keeps the job.
func (s *BookingService) matchExpression(expr string, job *model.Job) (bool, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("encode job: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("decode job: %w", err)
	}

	out, err := s.evaluator.Evaluate(expr, doc)
	if err != nil {
		return false, err
	}
	switch v := out.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return v != "", nil
	default:
		return true, nil
	}
}

func (s *BookingService) logWarn(ctx context.Context, msg string, err error, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, append(args, "error", err)...)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/booking"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
	"github.com/interpretek/booking-core/internal/notify"
	"github.com/interpretek/booking-core/internal/observability/metrics"
	"github.com/interpretek/booking-core/internal/observability/statsd"
)

// ClaimServiceOptions groups dependencies for ClaimService.
type ClaimServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Directory  core.UserDirectory      // Required: translator resolution
	Dispatcher *NotificationDispatcher // Optional: assignment notifications
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: claim metrics
}

// ClaimService arbitrates concurrent claims on pending jobs.
//
// The decisive step is the repository's conditional update: exactly one
// racing claim can match the pending row, so at most one caller ever
// observes Won. Eligibility is checked before the update, and a job found
// outside pending before the attempt reports AlreadyResolved.
type ClaimService struct {
	repo       core.JobRepository
	directory  core.UserDirectory
	dispatcher *NotificationDispatcher
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewClaimService constructs a new ClaimService.
func NewClaimService(opts ClaimServiceOptions) (*ClaimService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("UserDirectory is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "claim_service")
	}

	return &ClaimService{
		repo:       opts.Repo,
		directory:  opts.Directory,
		dispatcher: opts.Dispatcher,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewClaimService constructs a new ClaimService and panics on error.
func MustNewClaimService(opts ClaimServiceOptions) *ClaimService {
	svc, err := NewClaimService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ClaimService: %v", err))
	}
	return svc
}

// AcceptJob lets a translator claim a pending job.
func (s *ClaimService) AcceptJob(ctx context.Context, jobID, translatorID string) (*model.ClaimResult, error) {
	return s.arbitrate(ctx, jobID, translatorID)
}

// AcceptJobByID claims a job identified purely by id, with identical
// arbitration rules. Kept as a separate entry point because callers route
// payload-identified and id-identified claims differently.
func (s *ClaimService) AcceptJobByID(ctx context.Context, jobID, translatorID string) (*model.ClaimResult, error) {
	return s.arbitrate(ctx, jobID, translatorID)
}

// arbitrate is the single claim path shared by both accept entry points.
func (s *ClaimService) arbitrate(ctx context.Context, jobID, translatorID string) (*model.ClaimResult, error) {
	start := time.Now()

	tr, err := s.directory.GetTranslator(ctx, translatorID)
	if err != nil {
		s.emit(metrics.ResultError, err, start)
		return nil, fmt.Errorf("resolve translator: %w", err)
	}

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		s.emit(metrics.ResultError, err, start)
		return nil, fmt.Errorf("get job: %w", err)
	}

	// A job already out of pending is resolved regardless of eligibility.
	if job.Status != model.JobStatusPending {
		s.emit(string(model.ClaimAlreadyResolved), nil, start)
		return &model.ClaimResult{Outcome: model.ClaimAlreadyResolved, Job: job}, nil
	}

	if !booking.Eligible(tr, job) {
		s.emit(string(model.ClaimNotEligible), nil, start)
		return nil, apperrors.NotEligible(
			fmt.Sprintf("translator %s does not satisfy job %s requirements", translatorID, jobID))
	}

	claimed, won, err := s.repo.TryAssign(ctx, jobID, translatorID)
	if err != nil {
		s.emit(metrics.ResultError, err, start)
		return nil, fmt.Errorf("claim job: %w", err)
	}

	if !won {
		// The job was pending a moment ago, so the conditional update
		// lost to a concurrent claim unless the job has since left the
		// pending pool entirely.
		outcome := model.ClaimLost
		if claimed.Status != model.JobStatusPending && claimed.Status != model.JobStatusAssigned {
			outcome = model.ClaimAlreadyResolved
		}
		s.emit(string(outcome), nil, start)
		if s.logger != nil {
			s.logger.InfoContext(ctx, "claim lost",
				"job_id", jobID,
				"translator_id", translatorID,
				"status", claimed.Status,
			)
		}
		return &model.ClaimResult{Outcome: outcome, Job: claimed}, nil
	}

	s.emit(string(model.ClaimWon), nil, start)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "claim won",
			"job_id", jobID,
			"translator_id", translatorID,
		)
	}

	if s.dispatcher != nil {
		s.dispatcher.NotifyCustomer(ctx, claimed, notify.EventJobAssigned, "")
	}
	return &model.ClaimResult{Outcome: model.ClaimWon, Job: claimed}, nil
}

func (s *ClaimService) emit(outcome string, err error, start time.Time) {
	metrics.EmitClaim(s.metrics, metrics.ClaimMetric{
		Outcome:  outcome,
		Duration: time.Since(start),
		Err:      err,
	})
}

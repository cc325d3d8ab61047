package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/domain/booking"
	"github.com/interpretek/booking-core/internal/domain/model"
)

// PotentialJobsServiceOptions groups dependencies for PotentialJobsService.
type PotentialJobsServiceOptions struct {
	Repo      core.JobRepository // Required: job repository
	Directory core.UserDirectory // Required: translator resolution
	Logger    *slog.Logger       // Optional: structured logger
}

// PotentialJobsService lists the pending jobs a translator could claim.
type PotentialJobsService struct {
	repo      core.JobRepository
	directory core.UserDirectory
	logger    *slog.Logger
}

// NewPotentialJobsService constructs a new PotentialJobsService.
func NewPotentialJobsService(opts PotentialJobsServiceOptions) (*PotentialJobsService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Directory == nil {
		return nil, errors.New("UserDirectory is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "potential_jobs_service")
	}

	return &PotentialJobsService{
		repo:      opts.Repo,
		directory: opts.Directory,
		logger:    logger,
	}, nil
}

// MustNewPotentialJobsService constructs a new PotentialJobsService and panics on error.
func MustNewPotentialJobsService(opts PotentialJobsServiceOptions) *PotentialJobsService {
	svc, err := NewPotentialJobsService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create PotentialJobsService: %v", err))
	}
	return svc
}

// ListPotentialJobs returns the pending jobs the translator is eligible for,
// ordered by scheduled time ascending.
func (s *PotentialJobsService) ListPotentialJobs(ctx context.Context, translatorID string) ([]*model.Job, error) {
	tr, err := s.directory.GetTranslator(ctx, translatorID)
	if err != nil {
		return nil, fmt.Errorf("resolve translator: %w", err)
	}

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}

	eligible := booking.PotentialJobs(tr, pending)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "potential jobs listed",
			"translator_id", translatorID,
			"pending", len(pending),
			"eligible", len(eligible),
		)
	}
	return eligible, nil
}

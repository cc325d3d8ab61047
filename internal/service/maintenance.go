package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/interpretek/booking-core/config"
	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/observability/statsd"
)

// MaintenanceServiceOptions groups dependencies for MaintenanceService.
type MaintenanceServiceOptions struct {
	Repo    core.JobRepository       // Required: job repository
	Config  config.MaintenanceConfig // Required: maintenance configuration
	Logger  *slog.Logger             // Optional: structured logger
	Metrics statsd.Sink              // Optional: metrics sink (StatsD-compatible)
}

// MaintenanceService keeps the pending pool honest: pending jobs whose
// scheduled time has long passed are cancelled in batches so eligibility
// listings and fan-outs never offer unservable work.
type MaintenanceService struct {
	repo    core.JobRepository
	config  config.MaintenanceConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewMaintenanceService constructs a new MaintenanceService.
func NewMaintenanceService(opts MaintenanceServiceOptions) (*MaintenanceService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("maintenance interval must be positive")
	}
	if opts.Config.PendingMaxAge <= 0 {
		return nil, errors.New("pending max age must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "maintenance_service")
		logger.Debug("MaintenanceService initialized",
			"interval", opts.Config.Interval,
			"pending_max_age", opts.Config.PendingMaxAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &MaintenanceService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// MustNewMaintenanceService constructs a new MaintenanceService and panics on error.
func MustNewMaintenanceService(opts MaintenanceServiceOptions) *MaintenanceService {
	svc, err := NewMaintenanceService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create MaintenanceService: %v", err))
	}
	return svc
}

// Run starts the maintenance loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *MaintenanceService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting maintenance service", "interval", s.config.Interval)
	}

	// Jitter keeps several instances from expiring the same batch at once.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.ExpireStalePending(ctx); err != nil && !isContextCancellation(err) {
		s.logError(ctx, "initial expiry sweep", err)
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "maintenance service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.ExpireStalePending(ctx); err != nil && !isContextCancellation(err) {
				s.logError(ctx, "expiry sweep", err)
			}
		}
	}
}

// ExpireStalePending runs one expiry sweep and returns how many jobs were cancelled.
func (s *MaintenanceService) ExpireStalePending(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.config.PendingMaxAge)
	n, err := s.repo.ExpireStalePending(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("expire stale pending jobs: %w", err)
	}

	if s.metrics != nil && n > 0 {
		s.metrics.Count("maintenance.expired_pending", n, nil)
	}
	return n, nil
}

// waitWithJitter sleeps a random delay up to 10% of the interval.
func (s *MaintenanceService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *MaintenanceService) logError(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorContext(ctx, msg, "error", err)
}

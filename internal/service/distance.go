package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/data/pgxutil"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// DistanceFeedServiceOptions groups dependencies for DistanceFeedService.
type DistanceFeedServiceOptions struct {
	DB        *sql.DB                 // Required: transaction scope for admin updates
	Jobs      core.JobRepository      // Required: job repository
	Distances core.DistanceRepository // Required: distance telemetry
	Audits    core.AuditRepository    // Required: audit trail
	Logger    *slog.Logger            // Optional: structured logger
}

// DistanceFeedService applies admin distance/time feeds. The two halves of a
// feed are gated independently: distance and travel time upsert whenever
// present, admin-field corrections apply only when at least one carries a
// meaningful value. Admin changes and their audit entries commit in one
// transaction.
type DistanceFeedService struct {
	db        *sql.DB
	jobs      core.JobRepository
	distances core.DistanceRepository
	audits    core.AuditRepository
	logger    *slog.Logger
}

// NewDistanceFeedService constructs a new DistanceFeedService.
func NewDistanceFeedService(opts DistanceFeedServiceOptions) (*DistanceFeedService, error) {
	if opts.DB == nil {
		return nil, errors.New("DB is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Distances == nil {
		return nil, errors.New("DistanceRepository is required")
	}
	if opts.Audits == nil {
		return nil, errors.New("AuditRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "distance_feed_service")
	}

	return &DistanceFeedService{
		db:        opts.DB,
		jobs:      opts.Jobs,
		distances: opts.Distances,
		audits:    opts.Audits,
		logger:    logger,
	}, nil
}

// MustNewDistanceFeedService constructs a new DistanceFeedService and panics on error.
func MustNewDistanceFeedService(opts DistanceFeedServiceOptions) *DistanceFeedService {
	svc, err := NewDistanceFeedService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create DistanceFeedService: %v", err))
	}
	return svc
}

// ApplyFeed applies one feed entry for a job on behalf of the given actor.
func (s *DistanceFeedService) ApplyFeed(ctx context.Context, req *model.DistanceFeedRequest, actor string) error {
	if req == nil {
		return apperrors.Validation("feed request is required")
	}
	if err := req.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	// The job must exist before either gate applies.
	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	if req.HasDistanceUpdate() {
		if err := s.distances.Upsert(ctx, job.ID, req.DistanceKM, req.TimeMinutes); err != nil {
			return fmt.Errorf("upsert distance record: %w", err)
		}
		if s.logger != nil {
			s.logger.DebugContext(ctx, "distance record updated",
				"job_id", job.ID,
				"distance", req.DistanceKM,
				"time", req.TimeMinutes,
			)
		}
	}

	if !req.HasAdminUpdate() {
		return nil
	}

	update, entries := s.adminDiff(job, req, actor)
	if update.Empty() {
		return nil
	}

	err = pgxutil.WithSQLTx(ctx, s.db, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			if _, err := s.jobs.UpdateAdminFields(ctx, tx, job.ID, update); err != nil {
				return fmt.Errorf("apply admin fields: %w", err)
			}
			for _, entry := range entries {
				if err := s.audits.Append(ctx, tx, entry); err != nil {
					return fmt.Errorf("append audit entry: %w", err)
				}
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "admin correction applied",
			"job_id", job.ID,
			"actor", actor,
			"fields", len(entries),
		)
	}
	return nil
}

// adminDiff builds the admin-field update plus one audit entry per applied
// change. Fields follow the feed's truthy gate: comments apply when
// non-blank, session time when non-zero, flags when true.
func (s *DistanceFeedService) adminDiff(job *model.Job, req *model.DistanceFeedRequest, actor string) (core.AdminFieldUpdate, []*model.AuditEntry) {
	var (
		update  core.AdminFieldUpdate
		entries []*model.AuditEntry
	)

	record := func(field, oldVal, newVal string) {
		entries = append(entries, &model.AuditEntry{
			JobID:    job.ID,
			Actor:    actor,
			Field:    field,
			OldValue: oldVal,
			NewValue: newVal,
		})
	}

	if req.AdminComments != nil && *req.AdminComments != "" {
		old := ""
		if job.AdminComments != nil {
			old = *job.AdminComments
		}
		if old != *req.AdminComments {
			update.AdminComments = req.AdminComments
			record("admin_comments", old, *req.AdminComments)
		}
	}

	if req.SessionTime != nil && *req.SessionTime != 0 {
		old := ""
		if job.SessionTime != nil {
			old = strconv.Itoa(*job.SessionTime)
		}
		if job.SessionTime == nil || *job.SessionTime != *req.SessionTime {
			update.SessionTime = req.SessionTime
			record("session_time", old, strconv.Itoa(*req.SessionTime))
		}
	}

	if req.Flagged != nil && *req.Flagged && !job.Flagged {
		update.Flagged = req.Flagged
		record("flagged", "false", "true")
	}
	if req.ManuallyHandled != nil && *req.ManuallyHandled && !job.ManuallyHandled {
		update.ManuallyHandled = req.ManuallyHandled
		record("manually_handled", "false", "true")
	}
	if req.ByAdmin != nil && *req.ByAdmin && !job.ByAdmin {
		update.ByAdmin = req.ByAdmin
		record("by_admin", "false", "true")
	}

	return update, entries
}

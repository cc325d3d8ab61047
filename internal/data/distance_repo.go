package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/interpretek/booking-core/internal/data/pgxutil"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// DistanceRepo provides database operations for per-job distance telemetry.
type DistanceRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewDistanceRepo creates a new DistanceRepo.
func NewDistanceRepo(db *sql.DB, cfg RepoConfig) *DistanceRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &DistanceRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

// Upsert writes distance and travel time for a job. Both columns are
// overwritten with the provided values; the feed applies them as a unit
// whenever either is present.
func (r *DistanceRepo) Upsert(ctx context.Context, jobID string, distanceKM, timeMinutes *float64) error {
	if strings.TrimSpace(jobID) == "" {
		return ErrJobIDRequired
	}

	query := `
	  INSERT INTO job_distances (job_id, distance_km, time_minutes, updated_at)
	  VALUES ($1, $2, $3, $4)
	  ON CONFLICT (job_id) DO UPDATE
	  SET distance_km  = EXCLUDED.distance_km,
	      time_minutes = EXCLUDED.time_minutes,
	      updated_at   = EXCLUDED.updated_at`

	if _, err := r.DB.ExecContext(ctx, query,
		jobID, distanceKM, timeMinutes, r.timeProvider.Now().UTC()); err != nil {
		return apperrors.MapDBError(fmt.Errorf("upsert job distance: %w", err))
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "distance record updated", "job_id", jobID)
	}
	return nil
}

// GetByJobID fetches the distance record for a job.
func (r *DistanceRepo) GetByJobID(ctx context.Context, jobID string) (*model.DistanceRecord, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	query := `SELECT job_id, distance_km, time_minutes, updated_at FROM job_distances WHERE job_id = $1`

	var rec *model.DistanceRecord
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return fmt.Errorf("query job distance: %w", err)
		}
		defer rows.Close()

		found, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.DistanceRecord])
		if err != nil {
			return fmt.Errorf("collect job distance: %w", err)
		}
		rec = found
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return rec, nil
}

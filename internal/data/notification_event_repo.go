package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/interpretek/booking-core/internal/data/pgxutil"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// NotificationEventRepo records notification delivery outcomes for audit.
type NotificationEventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationEventRepo creates a new NotificationEventRepo.
func NewNotificationEventRepo(db *sql.DB, cfg RepoConfig) *NotificationEventRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &NotificationEventRepo{DB: db, timeProvider: tp}
}

// Record persists one delivery attempt's outcome.
func (r *NotificationEventRepo) Record(ctx context.Context, event *model.NotificationEvent) error {
	if event == nil {
		return errors.New("notification event is required")
	}
	if strings.TrimSpace(event.JobID) == "" {
		return ErrJobIDRequired
	}

	query := `
	  INSERT INTO notification_events (id, job_id, channel, recipient, event, outcome, detail, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.DB.ExecContext(ctx, query,
		uuid.NewString(),
		event.JobID,
		string(event.Channel),
		event.Recipient,
		event.Event,
		string(event.Outcome),
		event.Detail,
		r.timeProvider.Now().UTC(),
	); err != nil {
		return apperrors.MapDBError(fmt.Errorf("record notification event: %w", err))
	}
	return nil
}

// ListByJob returns a job's notification attempts, oldest first.
func (r *NotificationEventRepo) ListByJob(ctx context.Context, jobID string) ([]*model.NotificationEvent, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	query := `
	  SELECT id, job_id, channel, recipient, event, outcome, detail, created_at
	  FROM notification_events
	  WHERE job_id = $1
	  ORDER BY created_at ASC, id ASC`

	var events []*model.NotificationEvent
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return fmt.Errorf("query notification events: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.NotificationEvent])
		if err != nil {
			return fmt.Errorf("collect notification events: %w", err)
		}
		events = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return events, nil
}

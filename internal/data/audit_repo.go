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

// AuditRepo provides the append-only audit trail of admin edits.
type AuditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB, cfg RepoConfig) *AuditRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &AuditRepo{DB: db, timeProvider: tp}
}

// Append writes one audit entry within the caller's transaction.
func (r *AuditRepo) Append(ctx context.Context, tx *sql.Tx, entry *model.AuditEntry) error {
	if tx == nil {
		return errors.New("transaction is required")
	}
	if entry == nil {
		return errors.New("audit entry is required")
	}
	if strings.TrimSpace(entry.JobID) == "" {
		return ErrJobIDRequired
	}
	if strings.TrimSpace(entry.Field) == "" {
		return errors.New("audit field is required")
	}

	query := `
	  INSERT INTO job_audits (id, job_id, actor, field, old_value, new_value, created_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.ExecContext(ctx, query,
		uuid.NewString(),
		entry.JobID,
		entry.Actor,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		r.timeProvider.Now().UTC(),
	); err != nil {
		return apperrors.MapDBError(fmt.Errorf("append audit entry: %w", err))
	}
	return nil
}

// ListByJob returns a job's audit entries, oldest first.
func (r *AuditRepo) ListByJob(ctx context.Context, jobID string) ([]*model.AuditEntry, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	query := `
	  SELECT id, job_id, actor, field, old_value, new_value, created_at
	  FROM job_audits
	  WHERE job_id = $1
	  ORDER BY created_at ASC, id ASC`

	var entries []*model.AuditEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return fmt.Errorf("query audit entries: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.AuditEntry])
		if err != nil {
			return fmt.Errorf("collect audit entries: %w", err)
		}
		entries = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return entries, nil
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/interpretek/booking-core/internal/core"
	"github.com/interpretek/booking-core/internal/data/pgxutil"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// SQL used by TryAssign. The WHERE clause is the whole arbitration: only a
// job that is still pending and unassigned can be won, and PostgreSQL's row
// lock serializes racing updates so exactly one caller gets the row back.
const tryAssignSQL = `
  UPDATE jobs
  SET status = 'assigned', translator_id = $2, updated_at = $3
  WHERE id = $1 AND status = 'pending' AND translator_id IS NULL
  RETURNING ` + jobColumns

// TryAssign attempts to claim a pending job for the translator. When the
// conditional update matches no row the job is re-read and returned with
// ok=false so the caller can tell a lost race from a resolved job.
func (r *JobRepo) TryAssign(ctx context.Context, jobID, translatorID string) (*model.Job, bool, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, false, ErrJobIDRequired
	}
	if strings.TrimSpace(translatorID) == "" {
		return nil, false, errors.New("translator id is required")
	}

	var (
		job *model.Job
		won bool
	)
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, tryAssignSQL, jobID, translatorID, r.timeProvider.Now().UTC())
		if err != nil {
			return fmt.Errorf("try assign job: %w", err)
		}
		defer rows.Close()

		claimed, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err == nil {
			job = claimed
			won = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("collect claimed job: %w", err)
		}
		return nil
	}); err != nil {
		return nil, false, apperrors.MapDBError(err)
	}

	if won {
		if r.logger != nil {
			r.logger.DebugContext(ctx, "claim won",
				"job_id", jobID,
				"translator_id", translatorID,
			)
		}
		return job, true, nil
	}

	// Lost the conditional update; report the job's current state.
	current, err := r.GetByID(ctx, jobID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// Transition applies an atomic conditional lifecycle transition. The status
// check and the mutation run in one statement so a guard violation can never
// interleave with a concurrent writer.
func (r *JobRepo) Transition(ctx context.Context, params core.TransitionParams) (*model.Job, bool, error) {
	if strings.TrimSpace(params.JobID) == "" {
		return nil, false, ErrJobIDRequired
	}
	if len(params.From) == 0 || !params.To.Valid() {
		return nil, false, errors.New("transition requires from states and a valid target")
	}

	from := make([]string, 0, len(params.From))
	for _, s := range params.From {
		from = append(from, string(s))
	}

	query := `
	  UPDATE jobs
	  SET status = $2,
	      translator_id = CASE WHEN $3 THEN NULL ELSE translator_id END,
	      session_time = COALESCE($4, session_time),
	      updated_at = $5
	  WHERE id = $1 AND status = ANY($6)
	  RETURNING ` + jobColumns

	var (
		job *model.Job
		ok  bool
	)
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			params.JobID,
			string(params.To),
			params.ClearTranslator,
			params.SessionTime,
			r.timeProvider.Now().UTC(),
			from,
		)
		if err != nil {
			return fmt.Errorf("transition job: %w", err)
		}
		defer rows.Close()

		updated, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err == nil {
			job = updated
			ok = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("collect transitioned job: %w", err)
		}
		return nil
	}); err != nil {
		return nil, false, apperrors.MapDBError(err)
	}

	if ok {
		return job, true, nil
	}

	current, err := r.GetByID(ctx, params.JobID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// UpdateFields applies a partial booking-field update.
func (r *JobRepo) UpdateFields(ctx context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}
	if req == nil || req.Empty() {
		return r.GetByID(ctx, id)
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job update")
	}

	query := `
	  UPDATE jobs
	  SET from_language    = COALESCE($2, from_language),
	      to_language      = COALESCE($3, to_language),
	      certification    = COALESCE($4, certification),
	      town             = COALESCE($5, town),
	      on_site          = COALESCE($6, on_site),
	      duration_minutes = COALESCE($7, duration_minutes),
	      scheduled_at     = COALESCE($8, scheduled_at),
	      reference        = COALESCE($9, reference),
	      updated_at       = $10
	  WHERE id = $1
	  RETURNING ` + jobColumns

	var cert *string
	if req.Certification != nil {
		c := string(*req.Certification)
		cert = &c
	}
	var scheduled *time.Time
	if req.ScheduledAt != nil {
		t := req.ScheduledAt.UTC()
		scheduled = &t
	}

	var job *model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			id,
			lowerPtr(req.FromLanguage),
			lowerPtr(req.ToLanguage),
			cert,
			req.Town,
			req.OnSite,
			req.DurationMinutes,
			scheduled,
			req.Reference,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		defer rows.Close()

		updated, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect updated job: %w", err)
		}
		job = updated
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// SetContactEmail stores the booking contact email and reference.
func (r *JobRepo) SetContactEmail(ctx context.Context, id string, req *model.StoreJobEmailRequest) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}
	if req == nil {
		return nil, errors.New("store job email request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job email request")
	}

	query := `
	  UPDATE jobs
	  SET contact_email = $2,
	      reference     = COALESCE($3, reference),
	      updated_at    = $4
	  WHERE id = $1
	  RETURNING ` + jobColumns

	var job *model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			id,
			strings.TrimSpace(req.ContactEmail),
			req.Reference,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("set job contact email: %w", err)
		}
		defer rows.Close()

		updated, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect updated job: %w", err)
		}
		job = updated
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// UpdateAdminFields applies an admin correction within the caller's
// transaction so audit entries commit atomically with the change.
func (r *JobRepo) UpdateAdminFields(ctx context.Context, tx *sql.Tx, id string, update core.AdminFieldUpdate) (*model.Job, error) {
	if tx == nil {
		return nil, errors.New("transaction is required")
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}

	query := `
	  UPDATE jobs
	  SET admin_comments   = COALESCE($2, admin_comments),
	      session_time     = COALESCE($3, session_time),
	      flagged          = COALESCE($4, flagged),
	      manually_handled = COALESCE($5, manually_handled),
	      by_admin         = COALESCE($6, by_admin),
	      updated_at       = $7
	  WHERE id = $1
	  RETURNING ` + jobColumns

	row := tx.QueryRowContext(ctx, query,
		id,
		update.AdminComments,
		update.SessionTime,
		update.Flagged,
		update.ManuallyHandled,
		update.ByAdmin,
		r.timeProvider.Now().UTC(),
	)

	job, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// SQL used by ExpireStalePending; SKIP LOCKED keeps concurrent expiry
// runs from contending on the same batch.
const expireStalePendingSQL = `
  WITH cte AS (
    SELECT id FROM jobs
    WHERE status = 'pending' AND scheduled_at < $1
    ORDER BY scheduled_at ASC
    LIMIT $2
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET status = 'cancelled', translator_id = NULL, updated_at = $3
  FROM cte
  WHERE j.id = cte.id`

// ExpireStalePending cancels pending jobs whose scheduled time is past the
// cutoff, up to batchSize per call.
func (r *JobRepo) ExpireStalePending(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	res, err := r.DB.ExecContext(ctx, expireStalePendingSQL,
		cutoff.UTC(), batchSize, r.timeProvider.Now().UTC())
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("expire stale pending jobs: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 && r.logger != nil {
		r.logger.InfoContext(ctx, "expired stale pending jobs", "count", n)
	}
	return n, nil
}

// scanJobRow scans a full job row from a database/sql row.
func scanJobRow(row *sql.Row) (*model.Job, error) {
	var job model.Job
	err := row.Scan(
		&job.ID,
		&job.Status,
		&job.CustomerID,
		&job.TranslatorID,
		&job.FromLanguage,
		&job.ToLanguage,
		&job.Certification,
		&job.Town,
		&job.OnSite,
		&job.DurationMinutes,
		&job.ScheduledAt,
		&job.SessionTime,
		&job.Flagged,
		&job.ManuallyHandled,
		&job.ByAdmin,
		&job.AdminComments,
		&job.ContactEmail,
		&job.Reference,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(*s)
	return &v
}

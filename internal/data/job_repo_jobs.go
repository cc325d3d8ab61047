package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/interpretek/booking-core/internal/data/pgxutil"
	"github.com/interpretek/booking-core/internal/domain/model"
	apperrors "github.com/interpretek/booking-core/internal/errors"
)

// Create inserts a new pending job.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid create job request")
	}

	cert := req.Certification
	if cert == "" {
		cert = model.CertificationNone
	}

	query := `
		INSERT INTO jobs (
			id, status, customer_id, from_language, to_language, certification,
			town, on_site, duration_minutes, scheduled_at, reference,
			created_at, updated_at
		)
		VALUES ($1, 'pending', $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + jobColumns

	now := r.timeProvider.Now().UTC()
	var job *model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			uuid.NewString(),
			req.CustomerID,
			strings.ToLower(req.FromLanguage),
			strings.ToLower(req.ToLanguage),
			cert,
			req.Town,
			req.OnSite,
			req.DurationMinutes,
			req.ScheduledAt.UTC(),
			req.Reference,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		defer rows.Close()

		created, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect job: %w", err)
		}
		job = created
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "job created",
			"id", job.ID,
			"customer_id", job.CustomerID,
			"scheduled_at", job.ScheduledAt,
		)
	}
	return job, nil
}

// GetByID fetches a single job.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var job *model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, id)
		if err != nil {
			return fmt.Errorf("query job: %w", err)
		}
		defer rows.Close()

		found, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect job: %w", err)
		}
		job = found
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// ListByCustomer returns a customer's jobs, upcoming first.
func (r *JobRepo) ListByCustomer(ctx context.Context, customerID string) ([]*model.Job, error) {
	return r.listWhere(ctx, "customer_id = $1", customerID)
}

// ListByTranslator returns a translator's assigned jobs, upcoming first.
func (r *JobRepo) ListByTranslator(ctx context.Context, translatorID string) ([]*model.Job, error) {
	return r.listWhere(ctx, "translator_id = $1", translatorID)
}

// ListPending returns all pending jobs ordered by scheduled time ascending.
func (r *JobRepo) ListPending(ctx context.Context) ([]*model.Job, error) {
	return r.listWhere(ctx, "status = $1", string(model.JobStatusPending))
}

func (r *JobRepo) listWhere(ctx context.Context, where string, arg any) ([]*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE ` + where + `
		ORDER BY scheduled_at ASC, id ASC`

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return fmt.Errorf("query jobs: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect jobs: %w", err)
		}
		result = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return result, nil
}

// List returns jobs matching the admin filter options.
func (r *JobRepo) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	query, args := buildJobListQuery(opts)

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query jobs: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect jobs: %w", err)
		}
		result = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return result, nil
}

// History returns a user's past jobs (completed, cancelled, no_show), most recent first.
func (r *JobRepo) History(ctx context.Context, opts model.JobHistoryOptions) ([]*model.Job, error) {
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, errors.New("user id is required")
	}

	ownerColumn := "customer_id"
	if opts.Kind == model.UserKindTranslator {
		ownerColumn = "translator_id"
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE ` + ownerColumn + ` = $1`)
	sb.WriteString(` AND status = ANY($2)`)
	args := []any{opts.UserID, []string{
		string(model.JobStatusCompleted),
		string(model.JobStatusCancelled),
		string(model.JobStatusNoShow),
	}}

	if opts.Since != nil {
		args = append(args, opts.Since.UTC())
		sb.WriteString(" AND scheduled_at >= $" + strconv.Itoa(len(args)))
	}
	if opts.Until != nil {
		args = append(args, opts.Until.UTC())
		sb.WriteString(" AND scheduled_at <= $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY scheduled_at DESC, id DESC")

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := max(opts.Offset, 0)
	args = append(args, limit, offset)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	var result []*model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, sb.String(), args...)
		if err != nil {
			return fmt.Errorf("query job history: %w", err)
		}
		defer rows.Close()

		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Job])
		if err != nil {
			return fmt.Errorf("collect job history: %w", err)
		}
		result = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return result, nil
}

// buildJobListQuery assembles the filtered admin listing query.
func buildJobListQuery(opts model.JobListOptions) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if opts.Status != nil {
		add("status = ?", string(*opts.Status))
	}
	if opts.CustomerID != nil {
		add("customer_id = ?", *opts.CustomerID)
	}
	if opts.TranslatorID != nil {
		add("translator_id = ?", *opts.TranslatorID)
	}
	if opts.FromLanguage != nil {
		add("from_language = ?", strings.ToLower(*opts.FromLanguage))
	}
	if opts.Flagged != nil {
		add("flagged = ?", *opts.Flagged)
	}
	if opts.ScheduledFrom != nil {
		add("scheduled_at >= ?", opts.ScheduledFrom.UTC())
	}
	if opts.ScheduledTo != nil {
		add("scheduled_at <= ?", opts.ScheduledTo.UTC())
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + jobColumns + ` FROM jobs`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	sortBy := opts.SortBy
	switch sortBy {
	case "created_at", "status", "scheduled_at":
	default:
		sortBy = "scheduled_at"
	}
	order := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		order = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, order))

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := max(opts.Offset, 0)
	args = append(args, limit, offset)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	return sb.String(), args
}

package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapDBError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		err := MapDBError(pgx.ErrNoRows)
		assert.True(t, IsNotFound(err))
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := MapDBError(context.DeadlineExceeded)
		assert.True(t, IsTimeout(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		err := MapDBError(context.Canceled)
		assert.Equal(t, ErrCodeCanceled, GetCode(err))
	})

	t.Run("unique violation becomes conflict with field", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: `Key (reference)=(BK-1001) already exists.`,
		}
		err := MapDBError(pgErr)
		assert.True(t, IsConflict(err))
		assert.Equal(t, "reference", GetField(err))
	})

	t.Run("foreign key violation names the domain", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.ForeignKeyViolation,
			Detail: `Key (job_id)=(42) is not present in table "jobs".`,
		}
		err := MapDBError(pgErr)
		assert.Equal(t, ErrCodeForeignKey, GetCode(err))
		assert.Contains(t, err.Error(), "job")
	})

	t.Run("check violation becomes validation", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:       pgerrcode.CheckViolation,
			ColumnName: "duration_minutes",
		}
		err := MapDBError(pgErr)
		assert.True(t, IsValidation(err))
		assert.Equal(t, "duration_minutes", GetField(err))
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		plain := stderrors.New("not a db error")
		assert.Equal(t, plain, MapDBError(plain))
	})
}

package repositories

import (
	"context"
	"time"

	"github.com/gymnica/clubapi/internal/database"
	"github.com/gymnica/clubapi/internal/models"
)

// AttemptRepository persists lockout state in the attempt_ledger
// table, one row per (scope, identity) pair. Rows are created on the
// first failure and reused forever; a reset zeroes them in place.
type AttemptRepository struct {
	db *database.DB
}

func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Get returns the attempt record for (scope, identity), or
// models.ErrNotFound when the identity has never failed.
func (r *AttemptRepository) Get(ctx context.Context, scope models.GuardScope, identity string) (*models.AttemptRecord, error) {
	query := `
		SELECT failed_count, last_failure_at FROM attempt_ledger
		WHERE scope = $1 AND identity = $2
	`

	record := &models.AttemptRecord{Scope: scope, Identity: identity}
	err := r.db.Pool.QueryRow(ctx, query, scope, identity).Scan(&record.FailedCount, &record.LastFailureAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return record, nil
}

// RecordFailure creates the record with a count of 1 or increments the
// existing one, unconditionally overwriting last_failure_at.
func (r *AttemptRepository) RecordFailure(ctx context.Context, scope models.GuardScope, identity string, at time.Time) error {
	query := `
		INSERT INTO attempt_ledger (scope, identity, failed_count, last_failure_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (scope, identity)
		DO UPDATE SET failed_count = attempt_ledger.failed_count + 1, last_failure_at = EXCLUDED.last_failure_at
	`

	_, err := r.db.Pool.Exec(ctx, query, scope, identity, at)
	return err
}

// Reset zeroes the counter and clears the timestamp. A no-op when no
// record exists.
func (r *AttemptRepository) Reset(ctx context.Context, scope models.GuardScope, identity string) error {
	query := `
		UPDATE attempt_ledger SET failed_count = 0, last_failure_at = NULL
		WHERE scope = $1 AND identity = $2
	`

	_, err := r.db.Pool.Exec(ctx, query, scope, identity)
	return err
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymnica/clubapi/internal/database"
	"github.com/gymnica/clubapi/internal/models"
	"github.com/jackc/pgx/v5"
)

// EnrollmentRepository persists the per-(course, month) roster rows.
// Slot indices are allocated max(existing)+1 and never reuse holes, so
// the display order survives deletions. Write methods take a Querier
// so the propagation engine can scope a whole submission to one
// transaction.
type EnrollmentRepository struct {
	db *database.DB
}

func NewEnrollmentRepository(db *database.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByCourseMonth returns the roster ordered by slot index, joined
// best-effort with member accounts on email. Rows without an account
// come back with an empty MemberID; the join is not a referential
// constraint.
func (r *EnrollmentRepository) ListByCourseMonth(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error) {
	query := `
		SELECT e.slot_index, COALESCE(m.id, ''), e.first_name, e.last_name, e.email, e.phone,
		       e.cert_ref, e.cert_date, e.paid, e.amount
		FROM enrollment e
		LEFT JOIN members m ON e.email = m.email
		WHERE e.course = $1 AND e.month = $2
		ORDER BY e.slot_index
	`

	rows, err := r.db.Pool.Query(ctx, query, course, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollment: %w", err)
	}
	defer rows.Close()

	result := make([]*models.EnrollmentRow, 0)
	for rows.Next() {
		row := &models.EnrollmentRow{Course: course, Month: month}
		err := rows.Scan(
			&row.SlotIndex, &row.MemberID, &row.FirstName, &row.LastName,
			&row.Email, &row.Phone, &row.CertRef, &row.CertDate, &row.Paid, &row.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// DeleteMonth removes every row for (course, month). Only the
// full-replace path for a submitted month calls this; propagation
// into other months never deletes.
func (r *EnrollmentRepository) DeleteMonth(ctx context.Context, q Querier, course, month string) error {
	_, err := q.Exec(ctx, `DELETE FROM enrollment WHERE course = $1 AND month = $2`, course, month)
	return err
}

// NextSlotIndex allocates the next display slot for (course, month):
// max(existing)+1, starting at 0 when the pair is empty.
func (r *EnrollmentRepository) NextSlotIndex(ctx context.Context, q Querier, course, month string) (int, error) {
	query := `
		SELECT COALESCE(MAX(slot_index), -1) + 1 FROM enrollment
		WHERE course = $1 AND month = $2
	`

	var idx int
	if err := q.QueryRow(ctx, query, course, month).Scan(&idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// Insert writes a fully-populated row. The caller is responsible for
// allocating row.SlotIndex first.
func (r *EnrollmentRepository) Insert(ctx context.Context, q Querier, row *models.EnrollmentRow) error {
	query := `
		INSERT INTO enrollment (course, slot_index, month, first_name, last_name, email, phone, cert_ref, cert_date, paid, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		row.Course, row.SlotIndex, row.Month, row.FirstName, row.LastName,
		row.Email, row.Phone, row.CertRef, row.CertDate, row.Paid, row.Amount,
	)
	return database.MapPostgresError(err)
}

// ShadowExists reports whether a shadow row exists for the member
// identified by (email, phone) in (course, month). Matching is by the
// pair, not slot index: two rows sharing an email but not a phone are
// distinct members.
func (r *EnrollmentRepository) ShadowExists(ctx context.Context, q Querier, course, email, phone, month string) (bool, error) {
	query := `
		SELECT slot_index FROM enrollment
		WHERE course = $1 AND email = $2 AND phone = $3 AND month = $4
	`

	var idx int
	err := q.QueryRow(ctx, query, course, email, phone, month).Scan(&idx)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateIdentity copies the identity and certification fields onto an
// existing shadow row, leaving paid and amount untouched.
func (r *EnrollmentRepository) UpdateIdentity(ctx context.Context, q Querier, row *models.EnrollmentRow, month string) error {
	query := `
		UPDATE enrollment SET first_name = $1, last_name = $2, cert_ref = $3, cert_date = $4
		WHERE course = $5 AND email = $6 AND phone = $7 AND month = $8
	`

	_, err := q.Exec(ctx, query,
		row.FirstName, row.LastName, row.CertRef, row.CertDate,
		row.Course, row.Email, row.Phone, month,
	)
	return err
}

// NameExists reports whether (course, month) already holds a row for
// the given name and phone. Registration auto-enrollment uses it to
// stay idempotent across repeated signups.
func (r *EnrollmentRepository) NameExists(ctx context.Context, q Querier, course, firstName, lastName, phone, month string) (bool, error) {
	query := `
		SELECT 1 FROM enrollment
		WHERE course = $1 AND first_name = $2 AND last_name = $3 AND phone = $4 AND month = $5
	`

	var one int
	err := q.QueryRow(ctx, query, course, firstName, lastName, phone, month).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

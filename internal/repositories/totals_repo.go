package repositories

import (
	"context"

	"github.com/gymnica/clubapi/internal/database"
	"github.com/gymnica/clubapi/internal/models"
)

// TotalsRepository stores the admin-entered monetary aggregates per
// (course, month). The values are independent of the roster rows.
type TotalsRepository struct {
	db *database.DB
}

func NewTotalsRepository(db *database.DB) *TotalsRepository {
	return &TotalsRepository{db: db}
}

// Get returns the totals for (course, month), or models.ErrNotFound
// when none have been saved yet.
func (r *TotalsRepository) Get(ctx context.Context, course, month string) (*models.CourseTotals, error) {
	query := `
		SELECT cash_total, instructor_total FROM course_month_totals
		WHERE course = $1 AND month = $2
	`

	totals := &models.CourseTotals{Course: course, Month: month}
	err := r.db.Pool.QueryRow(ctx, query, course, month).Scan(&totals.CashTotal, &totals.InstructorTotal)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return totals, nil
}

// Upsert writes both totals, replacing any previous values.
func (r *TotalsRepository) Upsert(ctx context.Context, totals *models.CourseTotals) error {
	query := `
		INSERT INTO course_month_totals (course, month, cash_total, instructor_total)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course, month)
		DO UPDATE SET cash_total = EXCLUDED.cash_total, instructor_total = EXCLUDED.instructor_total
	`

	_, err := r.db.Pool.Exec(ctx, query, totals.Course, totals.Month, totals.CashTotal, totals.InstructorTotal)
	return err
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/months"
	"github.com/gymnica/clubapi/internal/repositories"
	"github.com/jackc/pgx/v5"
)

// EnrollmentStore is the persistence surface the propagation engine
// drives. The Querier parameter lets a whole submission share one
// transaction.
type EnrollmentStore interface {
	ListByCourseMonth(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error)
	DeleteMonth(ctx context.Context, q repositories.Querier, course, month string) error
	NextSlotIndex(ctx context.Context, q repositories.Querier, course, month string) (int, error)
	Insert(ctx context.Context, q repositories.Querier, row *models.EnrollmentRow) error
	ShadowExists(ctx context.Context, q repositories.Querier, course, email, phone, month string) (bool, error)
	UpdateIdentity(ctx context.Context, q repositories.Querier, row *models.EnrollmentRow, month string) error
}

// RosterMemberStore covers the implicit member creation on the
// single-row save path.
type RosterMemberStore interface {
	GetByEmailTx(ctx context.Context, q repositories.Querier, email string) (*models.Member, error)
	CreateTx(ctx context.Context, q repositories.Querier, member *models.Member) (*models.Member, error)
}

// TxRunner runs a function inside one transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// HorizonConfig fixes the ledger's time span. The baseline month is
// the first label of the horizon; only edits to it propagate forward.
type HorizonConfig struct {
	StartMonth int
	StartYear  int
	YearsAhead int
}

// Baseline returns the designated baseline month label.
func (c HorizonConfig) Baseline() string {
	return months.Label(c.StartMonth, c.StartYear)
}

// Months returns the full ordered horizon, baseline first.
func (c HorizonConfig) Months() []string {
	return months.Generate(c.StartMonth, c.StartYear, c.YearsAhead)
}

// SavedRow reports the slot allocated to one submitted roster row.
type SavedRow struct {
	Index int    `json:"index"`
	Email string `json:"email"`
}

// RosterService owns the monthly enrollment ledger: month reads, the
// full-replace save with forward propagation, and the single-row
// variant.
type RosterService struct {
	tx          TxRunner
	enrollments EnrollmentStore
	members     RosterMemberStore
	horizon     HorizonConfig
	logger      *slog.Logger
}

func NewRosterService(tx TxRunner, enrollments EnrollmentStore, members RosterMemberStore, horizon HorizonConfig, logger *slog.Logger) *RosterService {
	return &RosterService{
		tx:          tx,
		enrollments: enrollments,
		members:     members,
		horizon:     horizon,
		logger:      logger,
	}
}

// Roster returns the ordered roster for (course, month), joined
// best-effort with member accounts.
func (s *RosterService) Roster(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error) {
	return s.enrollments.ListByCourseMonth(ctx, course, month)
}

// ReplaceMonthRoster replaces the full roster of (course, month) with
// the submitted rows, reallocating slot indices 0..N-1 in submission
// order. When month is the baseline, each row's identity and
// certification fields are mirrored into every later month of the
// horizon: an existing shadow row (matched by email and phone, never
// by slot) is updated in place with paid and amount untouched, a
// missing one is inserted unpaid. Rows in non-baseline months are
// never deleted here, so dropping a member from the baseline keeps
// their already-created shadow rows — the ledger does not lose
// history. The whole submission commits atomically.
func (s *RosterService) ReplaceMonthRoster(ctx context.Context, course, month string, rows []*models.EnrollmentRow) ([]SavedRow, error) {
	saved := make([]SavedRow, 0, len(rows))

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.enrollments.DeleteMonth(ctx, tx, course, month); err != nil {
			return err
		}

		propagate := month == s.horizon.Baseline()

		for _, row := range rows {
			row.Course = course
			row.Month = month

			idx, err := s.enrollments.NextSlotIndex(ctx, tx, course, month)
			if err != nil {
				return err
			}
			row.SlotIndex = idx

			if err := s.enrollments.Insert(ctx, tx, row); err != nil {
				return err
			}
			saved = append(saved, SavedRow{Index: idx, Email: row.Email})

			if !propagate {
				continue
			}

			for _, label := range s.horizon.Months() {
				if label == month {
					continue
				}

				exists, err := s.enrollments.ShadowExists(ctx, tx, course, row.Email, row.Phone, label)
				if err != nil {
					return err
				}

				if exists {
					if err := s.enrollments.UpdateIdentity(ctx, tx, row, label); err != nil {
						return err
					}
					continue
				}

				shadowIdx, err := s.enrollments.NextSlotIndex(ctx, tx, course, label)
				if err != nil {
					return err
				}
				shadow := &models.EnrollmentRow{
					Course:    course,
					SlotIndex: shadowIdx,
					Month:     label,
					FirstName: row.FirstName,
					LastName:  row.LastName,
					Email:     row.Email,
					Phone:     row.Phone,
					CertRef:   row.CertRef,
					CertDate:  row.CertDate,
					Paid:      false,
					Amount:    "",
				}
				if err := s.enrollments.Insert(ctx, tx, shadow); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("roster saved",
		slog.String("course", course),
		slog.String("month", month),
		slog.Int("rows", len(rows)))
	return saved, nil
}

// SaveSingleRow appends one row to (course, month) without any
// propagation, creating a member account for the email when none
// exists. Returns the backing member's id and the allocated slot.
func (s *RosterService) SaveSingleRow(ctx context.Context, course, month string, row *models.EnrollmentRow) (string, int, error) {
	var memberID string
	var slotIndex int

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		member, err := s.members.GetByEmailTx(ctx, tx, row.Email)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}

		if member == nil {
			member, err = s.members.CreateTx(ctx, tx, &models.Member{
				Name:  strings.TrimSpace(row.FirstName + " " + row.LastName),
				Email: row.Email,
				Phone: row.Phone,
			})
			if err != nil {
				return err
			}
		}
		memberID = member.ID

		idx, err := s.enrollments.NextSlotIndex(ctx, tx, course, month)
		if err != nil {
			return err
		}
		slotIndex = idx

		row.Course = course
		row.Month = month
		row.SlotIndex = idx
		return s.enrollments.Insert(ctx, tx, row)
	})
	if err != nil {
		return "", 0, err
	}

	return memberID, slotIndex, nil
}

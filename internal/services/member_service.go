package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/repositories"
	pkgauth "github.com/gymnica/clubapi/pkg/auth"
	"github.com/jackc/pgx/v5"
)

// MemberStore is the member persistence surface for registration and
// self-service reads.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	UpdateAttachmentRef(ctx context.Context, id, ref string) error
}

// AutoEnrollStore is the slice of the enrollment store registration
// needs to seed the default course across the horizon.
type AutoEnrollStore interface {
	NextSlotIndex(ctx context.Context, q repositories.Querier, course, month string) (int, error)
	Insert(ctx context.Context, q repositories.Querier, row *models.EnrollmentRow) error
	NameExists(ctx context.Context, q repositories.Querier, course, firstName, lastName, phone, month string) (bool, error)
}

// MemberService handles registration and member self-service.
type MemberService struct {
	tx            TxRunner
	members       MemberStore
	enrollments   AutoEnrollStore
	horizon       HorizonConfig
	defaultCourse string
	logger        *slog.Logger
}

func NewMemberService(tx TxRunner, members MemberStore, enrollments AutoEnrollStore, horizon HorizonConfig, defaultCourse string, logger *slog.Logger) *MemberService {
	return &MemberService{
		tx:            tx,
		members:       members,
		enrollments:   enrollments,
		horizon:       horizon,
		defaultCourse: defaultCourse,
		logger:        logger,
	}
}

// Register creates a member account and enrolls them in the default
// course for every month of the horizon. Enrollment is idempotent on
// (course, name, phone, month), so a re-registration attempt after a
// partial failure does not duplicate roster rows.
func (s *MemberService) Register(ctx context.Context, name, email, password, phone string) (*models.Member, error) {
	existing, err := s.members.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrConflict
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	member, err := s.members.Create(ctx, &models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
	})
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitName(name)

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, label := range s.horizon.Months() {
			exists, err := s.enrollments.NameExists(ctx, tx, s.defaultCourse, firstName, lastName, phone, label)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			idx, err := s.enrollments.NextSlotIndex(ctx, tx, s.defaultCourse, label)
			if err != nil {
				return err
			}

			row := &models.EnrollmentRow{
				Course:    s.defaultCourse,
				SlotIndex: idx,
				Month:     label,
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Phone:     phone,
				Paid:      false,
				Amount:    "",
			}
			if err := s.enrollments.Insert(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member registered",
		slog.String("member_id", member.ID),
		slog.String("course", s.defaultCourse))
	return member, nil
}

// Profile returns the member identified by id.
func (s *MemberService) Profile(ctx context.Context, id string) (*models.Member, error) {
	return s.members.GetByID(ctx, id)
}

// ListMembers returns all member accounts, newest first.
func (s *MemberService) ListMembers(ctx context.Context) ([]*models.Member, error) {
	return s.members.List(ctx)
}

// splitName divides a display name into first name and the rest.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/repositories"
	"github.com/jackc/pgx/v5"
)

// MockMemberStore implements MemberStore, MemberFinder and
// RosterMemberStore for unit tests
type MockMemberStore struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.Member, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.Member, error)
	ListFunc                func(ctx context.Context) ([]*models.Member, error)
	CreateFunc              func(ctx context.Context, member *models.Member) (*models.Member, error)
	UpdateAttachmentRefFunc func(ctx context.Context, id, ref string) error
	GetByEmailTxFunc        func(ctx context.Context, q repositories.Querier, email string) (*models.Member, error)
	CreateTxFunc            func(ctx context.Context, q repositories.Querier, member *models.Member) (*models.Member, error)
}

func (m *MockMemberStore) GetByID(ctx context.Context, id string) (*models.Member, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockMemberStore) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockMemberStore) List(ctx context.Context) ([]*models.Member, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Member{}, nil
}

func (m *MockMemberStore) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	created := *member
	created.ID = "mock-member-id"
	return &created, nil
}

func (m *MockMemberStore) UpdateAttachmentRef(ctx context.Context, id, ref string) error {
	if m.UpdateAttachmentRefFunc != nil {
		return m.UpdateAttachmentRefFunc(ctx, id, ref)
	}
	return nil
}

func (m *MockMemberStore) GetByEmailTx(ctx context.Context, q repositories.Querier, email string) (*models.Member, error) {
	if m.GetByEmailTxFunc != nil {
		return m.GetByEmailTxFunc(ctx, q, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockMemberStore) CreateTx(ctx context.Context, q repositories.Querier, member *models.Member) (*models.Member, error) {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, q, member)
	}
	created := *member
	created.ID = "mock-member-id"
	return &created, nil
}

// fakeTxRunner runs the callback directly without a real transaction.
// The in-memory stores ignore the Querier argument.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

// memEnrollmentStore is an in-memory EnrollmentStore and
// AutoEnrollStore keyed by (course, month)
type memEnrollmentStore struct {
	rows map[string][]*models.EnrollmentRow
}

func newMemEnrollmentStore() *memEnrollmentStore {
	return &memEnrollmentStore{rows: make(map[string][]*models.EnrollmentRow)}
}

func enrollKey(course, month string) string {
	return fmt.Sprintf("%s/%s", course, month)
}

func (s *memEnrollmentStore) ListByCourseMonth(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error) {
	out := make([]*models.EnrollmentRow, len(s.rows[enrollKey(course, month)]))
	copy(out, s.rows[enrollKey(course, month)])
	return out, nil
}

func (s *memEnrollmentStore) DeleteMonth(ctx context.Context, q repositories.Querier, course, month string) error {
	delete(s.rows, enrollKey(course, month))
	return nil
}

func (s *memEnrollmentStore) NextSlotIndex(ctx context.Context, q repositories.Querier, course, month string) (int, error) {
	max := -1
	for _, row := range s.rows[enrollKey(course, month)] {
		if row.SlotIndex > max {
			max = row.SlotIndex
		}
	}
	return max + 1, nil
}

func (s *memEnrollmentStore) Insert(ctx context.Context, q repositories.Querier, row *models.EnrollmentRow) error {
	stored := *row
	key := enrollKey(row.Course, row.Month)
	s.rows[key] = append(s.rows[key], &stored)
	return nil
}

func (s *memEnrollmentStore) ShadowExists(ctx context.Context, q repositories.Querier, course, email, phone, month string) (bool, error) {
	for _, row := range s.rows[enrollKey(course, month)] {
		if row.Email == email && row.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *memEnrollmentStore) UpdateIdentity(ctx context.Context, q repositories.Querier, row *models.EnrollmentRow, month string) error {
	for _, existing := range s.rows[enrollKey(row.Course, month)] {
		if existing.Email == row.Email && existing.Phone == row.Phone {
			existing.FirstName = row.FirstName
			existing.LastName = row.LastName
			existing.CertRef = row.CertRef
			existing.CertDate = row.CertDate
		}
	}
	return nil
}

func (s *memEnrollmentStore) NameExists(ctx context.Context, q repositories.Querier, course, firstName, lastName, phone, month string) (bool, error) {
	for _, row := range s.rows[enrollKey(course, month)] {
		if row.FirstName == firstName && row.LastName == lastName && row.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

// memAttemptStore is an in-memory guard.AttemptStore
type memAttemptStore struct {
	records map[string]*models.AttemptRecord
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{records: make(map[string]*models.AttemptRecord)}
}

func attemptKey(scope models.GuardScope, identity string) string {
	return fmt.Sprintf("%s/%s", scope, identity)
}

func (s *memAttemptStore) Get(ctx context.Context, scope models.GuardScope, identity string) (*models.AttemptRecord, error) {
	record, ok := s.records[attemptKey(scope, identity)]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *memAttemptStore) RecordFailure(ctx context.Context, scope models.GuardScope, identity string, at time.Time) error {
	key := attemptKey(scope, identity)
	record, ok := s.records[key]
	if !ok {
		record = &models.AttemptRecord{Scope: scope, Identity: identity}
		s.records[key] = record
	}
	record.FailedCount++
	record.LastFailureAt = &at
	return nil
}

func (s *memAttemptStore) Reset(ctx context.Context, scope models.GuardScope, identity string) error {
	if record, ok := s.records[attemptKey(scope, identity)]; ok {
		record.FailedCount = 0
		record.LastFailureAt = nil
	}
	return nil
}

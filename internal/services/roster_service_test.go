package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHorizon = HorizonConfig{StartMonth: 10, StartYear: 2025, YearsAhead: 5}

func newTestRosterService(store *memEnrollmentStore, members RosterMemberStore) *RosterService {
	if members == nil {
		members = &MockMemberStore{}
	}
	return NewRosterService(fakeTxRunner{}, store, members, testHorizon, slog.Default())
}

func rosterRow(first, last, email, phone string) *models.EnrollmentRow {
	return &models.EnrollmentRow{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     phone,
		CertRef:   "cert_" + email,
		CertDate:  "2025-10-01",
		Paid:      true,
		Amount:    "50",
	}
}

func TestRosterService_ReplaceMonthRoster_AllocatesDenseIndices(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()

	saved, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
		rosterRow("Bruno", "Conti", "bruno@example.com", "222"),
		rosterRow("Carla", "Deruta", "carla@example.com", "333"),
	})

	require.NoError(t, err)
	require.Len(t, saved, 3)
	for i, s := range saved {
		assert.Equal(t, i, s.Index)
	}
	assert.Equal(t, "anna@example.com", saved[0].Email)

	rows, err := svc.Roster(context.Background(), "Pilates", baseline)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRosterService_ReplaceMonthRoster_ResubmitReallocatesFromZero(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
		rosterRow("Bruno", "Conti", "bruno@example.com", "222"),
	})
	require.NoError(t, err)

	// Resubmit with one row dropped: the survivor gets slot 0 again.
	saved, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Bruno", "Conti", "bruno@example.com", "222"),
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 0, saved[0].Index)

	rows, err := svc.Roster(context.Background(), "Pilates", baseline)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bruno@example.com", rows[0].Email)
}

func TestRosterService_ReplaceMonthRoster_BaselinePropagatesShadows(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()
	horizon := testHorizon.Months()

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
	})
	require.NoError(t, err)

	// Every non-baseline month holds one unpaid shadow with the
	// identity fields copied and the payment fields blanked.
	for _, label := range horizon[1:] {
		rows, err := svc.Roster(context.Background(), "Pilates", label)
		require.NoError(t, err)
		require.Len(t, rows, 1, "month %s", label)
		assert.Equal(t, "Anna", rows[0].FirstName)
		assert.Equal(t, "anna@example.com", rows[0].Email)
		assert.Equal(t, "cert_anna@example.com", rows[0].CertRef)
		assert.False(t, rows[0].Paid)
		assert.Equal(t, "", rows[0].Amount)
	}
}

func TestRosterService_ReplaceMonthRoster_PropagationPreservesShadowPayments(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()
	later := testHorizon.Months()[3]

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
	})
	require.NoError(t, err)

	// Mark the shadow in a later month as paid.
	for _, row := range store.rows[enrollKey("Pilates", later)] {
		row.Paid = true
		row.Amount = "45"
	}

	// Rename Anna in the baseline and resubmit.
	renamed := rosterRow("Annamaria", "Bianchi", "anna@example.com", "111")
	_, err = svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{renamed})
	require.NoError(t, err)

	rows, err := svc.Roster(context.Background(), "Pilates", later)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Annamaria", rows[0].FirstName)
	assert.True(t, rows[0].Paid)
	assert.Equal(t, "45", rows[0].Amount)
}

func TestRosterService_ReplaceMonthRoster_ResubmitIsIdempotentOnShadows(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()
	later := testHorizon.Months()[1]

	rows := []*models.EnrollmentRow{rosterRow("Anna", "Bianchi", "anna@example.com", "111")}
	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, rows)
	require.NoError(t, err)

	rows2 := []*models.EnrollmentRow{rosterRow("Anna", "Bianchi", "anna@example.com", "111")}
	_, err = svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, rows2)
	require.NoError(t, err)

	shadow, err := svc.Roster(context.Background(), "Pilates", later)
	require.NoError(t, err)
	assert.Len(t, shadow, 1)
}

func TestRosterService_ReplaceMonthRoster_DroppedBaselineRowKeepsShadows(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()
	later := testHorizon.Months()[1]

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
	})
	require.NoError(t, err)

	// Resubmit the baseline without Anna: her shadow rows survive.
	_, err = svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{})
	require.NoError(t, err)

	base, err := svc.Roster(context.Background(), "Pilates", baseline)
	require.NoError(t, err)
	assert.Len(t, base, 0)

	shadow, err := svc.Roster(context.Background(), "Pilates", later)
	require.NoError(t, err)
	assert.Len(t, shadow, 1)
}

func TestRosterService_ReplaceMonthRoster_NonBaselineDoesNotPropagate(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	months := testHorizon.Months()

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", months[2], []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
	})
	require.NoError(t, err)

	for i, label := range months {
		rows, err := svc.Roster(context.Background(), "Pilates", label)
		require.NoError(t, err)
		if i == 2 {
			assert.Len(t, rows, 1)
		} else {
			assert.Len(t, rows, 0, "month %s", label)
		}
	}
}

func TestRosterService_ReplaceMonthRoster_CoursesAreIsolated(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()

	_, err := svc.ReplaceMonthRoster(context.Background(), "Pilates", baseline, []*models.EnrollmentRow{
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"),
	})
	require.NoError(t, err)

	rows, err := svc.Roster(context.Background(), "Yoga", baseline)
	require.NoError(t, err)
	assert.Len(t, rows, 0)
}

func TestRosterService_SaveSingleRow_AppendsWithoutPropagation(t *testing.T) {
	store := newMemEnrollmentStore()
	svc := newTestRosterService(store, nil)
	baseline := testHorizon.Baseline()
	later := testHorizon.Months()[1]

	memberID, idx, err := svc.SaveSingleRow(context.Background(), "Pilates", baseline,
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"))

	require.NoError(t, err)
	assert.Equal(t, "mock-member-id", memberID)
	assert.Equal(t, 0, idx)

	shadow, err := svc.Roster(context.Background(), "Pilates", later)
	require.NoError(t, err)
	assert.Len(t, shadow, 0)
}

func TestRosterService_SaveSingleRow_ReusesExistingMember(t *testing.T) {
	store := newMemEnrollmentStore()
	created := 0
	members := &MockMemberStore{
		GetByEmailTxFunc: func(ctx context.Context, q repositories.Querier, email string) (*models.Member, error) {
			return &models.Member{ID: "member-42", Email: email}, nil
		},
		CreateTxFunc: func(ctx context.Context, q repositories.Querier, member *models.Member) (*models.Member, error) {
			created++
			return member, nil
		},
	}
	svc := newTestRosterService(store, members)

	memberID, _, err := svc.SaveSingleRow(context.Background(), "Pilates", testHorizon.Baseline(),
		rosterRow("Anna", "Bianchi", "anna@example.com", "111"))

	require.NoError(t, err)
	assert.Equal(t, "member-42", memberID)
	assert.Equal(t, 0, created)
}

package guard_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gymnica/clubapi/internal/guard"
	"github.com/gymnica/clubapi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests walk time forward deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// memAttemptStore implements guard.AttemptStore in memory.
type memAttemptStore struct {
	records map[string]*models.AttemptRecord
	failErr error
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{records: make(map[string]*models.AttemptRecord)}
}

func key(scope models.GuardScope, identity string) string {
	return string(scope) + "|" + identity
}

func (s *memAttemptStore) Get(ctx context.Context, scope models.GuardScope, identity string) (*models.AttemptRecord, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	record, ok := s.records[key(scope, identity)]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *memAttemptStore) RecordFailure(ctx context.Context, scope models.GuardScope, identity string, at time.Time) error {
	if s.failErr != nil {
		return s.failErr
	}
	k := key(scope, identity)
	if record, ok := s.records[k]; ok {
		record.FailedCount++
		record.LastFailureAt = &at
		return nil
	}
	s.records[k] = &models.AttemptRecord{
		Scope:         scope,
		Identity:      identity,
		FailedCount:   1,
		LastFailureAt: &at,
	}
	return nil
}

func (s *memAttemptStore) Reset(ctx context.Context, scope models.GuardScope, identity string) error {
	if s.failErr != nil {
		return s.failErr
	}
	if record, ok := s.records[key(scope, identity)]; ok {
		record.FailedCount = 0
		record.LastFailureAt = nil
	}
	return nil
}

func newGuard(store guard.AttemptStore, clock guard.Clock) *guard.Guard {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return guard.New(store, guard.Config{
		MaxFailedAttempts: 3,
		LockoutWindow:     60 * time.Second,
	}, clock, logger)
}

func TestGuardCheck_AllowsUnknownIdentity(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)

	decision, err := g.Check(context.Background(), models.ScopeMemberLogin, "1.2.3.4")

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RetryAfter)
}

func TestGuardCheck_BlocksAfterThresholdWithinWindow(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	// Three failures at t=0, t=1, t=2.
	for i := 0; i < 3; i++ {
		require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
		clock.advance(1 * time.Second)
	}

	// Check at t=3: blocked. The window is measured from the last
	// failure at t=2, so 59 seconds remain.
	decision, err := g.Check(ctx, models.ScopeMemberLogin, "1.2.3.4")

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 59, decision.RetryAfter)
}

func TestGuardCheck_BlockedAttemptDoesNotCount(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
	}

	// A blocked check is read-only: the handler returns 429 before
	// any failure is recorded, so the count must stay at 3.
	decision, err := g.Check(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	record, err := store.Get(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 3, record.FailedCount)
}

func TestGuardCheck_ExpiredWindowResetsOnRead(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
	}

	clock.advance(61 * time.Second)

	decision, err := g.Check(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// The reset happened as a side effect of the check, so a new
	// failure starts a fresh count of 1, not 4.
	require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
	record, err := store.Get(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 1, record.FailedCount)
}

func TestGuardRecordSuccess_ResetsRegardlessOfCount(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
	}

	require.NoError(t, g.RecordSuccess(ctx, models.ScopeMemberLogin, "1.2.3.4"))

	record, err := store.Get(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.Zero(t, record.FailedCount)
	assert.Nil(t, record.LastFailureAt)

	// Idempotent: resetting again is a no-op.
	require.NoError(t, g.RecordSuccess(ctx, models.ScopeMemberLogin, "1.2.3.4"))
}

func TestGuard_ScopesAreIndependent(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	// Lock out the admin scope for this identity.
	for i := 0; i < 3; i++ {
		require.NoError(t, g.RecordFailure(ctx, models.ScopeAdminLogin, "1.2.3.4"))
	}

	adminDecision, err := g.Check(ctx, models.ScopeAdminLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, adminDecision.Allowed)

	memberDecision, err := g.Check(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, memberDecision.Allowed)
}

func TestGuardCheck_PropagatesStorageErrors(t *testing.T) {
	store := newMemAttemptStore()
	store.failErr = errors.New("connection refused")
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)

	_, err := g.Check(context.Background(), models.ScopeMemberLogin, "1.2.3.4")

	assert.Error(t, err)
}

func TestGuardCheck_BelowThresholdAllowed(t *testing.T) {
	store := newMemAttemptStore()
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	g := newGuard(store, clock)
	ctx := context.Background()

	require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))
	require.NoError(t, g.RecordFailure(ctx, models.ScopeMemberLogin, "1.2.3.4"))

	decision, err := g.Check(ctx, models.ScopeMemberLogin, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

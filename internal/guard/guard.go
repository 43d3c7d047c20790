// Package guard implements the per-identity, time-windowed lockout
// protecting the member and admin login endpoints. State lives in the
// attempt ledger keyed by (scope, identity); the two scopes share the
// algorithm but never each other's counters.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gymnica/clubapi/internal/models"
)

// AttemptStore is the persistence interface for attempt records.
type AttemptStore interface {
	Get(ctx context.Context, scope models.GuardScope, identity string) (*models.AttemptRecord, error)
	RecordFailure(ctx context.Context, scope models.GuardScope, identity string, at time.Time) error
	Reset(ctx context.Context, scope models.GuardScope, identity string) error
}

// Config holds the lockout thresholds.
type Config struct {
	MaxFailedAttempts int
	LockoutWindow     time.Duration
}

// Decision is the outcome of a Check. RetryAfter is in whole seconds,
// zero when the attempt is allowed.
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// Guard admits or blocks authentication attempts. Expired lockouts are
// reset lazily on the read path, so no background sweep is needed.
//
// The read-then-reset in Check is not serialized against concurrent
// requests for the same identity: two racing calls can double-count a
// failure or double-reset an expired window. That is an accepted
// property of a best-effort throttle; do not add locking here.
type Guard struct {
	store  AttemptStore
	config Config
	clock  Clock
	logger *slog.Logger
}

func New(store AttemptStore, config Config, clock Clock, logger *slog.Logger) *Guard {
	return &Guard{
		store:  store,
		config: config,
		clock:  clock,
		logger: logger,
	}
}

// Check reports whether an attempt for (scope, identity) may proceed.
// When the failure count has reached the threshold and the window has
// not yet elapsed, the decision is a block carrying the remaining
// seconds. When the window has elapsed, the record is reset as a side
// effect and the attempt is allowed.
func (g *Guard) Check(ctx context.Context, scope models.GuardScope, identity string) (Decision, error) {
	record, err := g.store.Get(ctx, scope, identity)
	if errors.Is(err, models.ErrNotFound) {
		return Decision{Allowed: true}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if record.FailedCount < g.config.MaxFailedAttempts || record.LastFailureAt == nil {
		return Decision{Allowed: true}, nil
	}

	elapsed := g.clock.Now().Sub(*record.LastFailureAt)
	remaining := g.config.LockoutWindow - elapsed
	if remaining > 0 {
		retryAfter := int(remaining.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		g.logger.Warn("login attempt blocked",
			slog.String("scope", string(scope)),
			slog.String("identity", identity),
			slog.Int("failed_count", record.FailedCount),
			slog.Int("retry_after", retryAfter))
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	// Window elapsed: clear the counter so the next failure starts at 1.
	if err := g.store.Reset(ctx, scope, identity); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true}, nil
}

// RecordFailure creates the record with a count of 1 or increments it,
// always overwriting the last-failure timestamp with now.
func (g *Guard) RecordFailure(ctx context.Context, scope models.GuardScope, identity string) error {
	return g.store.RecordFailure(ctx, scope, identity, g.clock.Now())
}

// RecordSuccess resets the record unconditionally. A no-op when the
// record is already clear or absent.
func (g *Guard) RecordSuccess(ctx context.Context, scope models.GuardScope, identity string) error {
	return g.store.Reset(ctx, scope, identity)
}

package models

import "time"

// GuardScope namespaces lockout state so that hammering one login
// endpoint never affects the other.
type GuardScope string

const (
	ScopeMemberLogin GuardScope = "member_login"
	ScopeAdminLogin  GuardScope = "admin_login"
)

// AttemptRecord tracks failed authentication attempts for one
// (scope, identity) pair. Identity is the caller-supplied client
// address. A record is created on first failure and reused forever;
// a successful login resets it to (0, nil).
type AttemptRecord struct {
	Scope         GuardScope
	Identity      string
	FailedCount   int
	LastFailureAt *time.Time
}

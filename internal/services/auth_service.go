package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/gymnica/clubapi/internal/auth"
	"github.com/gymnica/clubapi/internal/guard"
	"github.com/gymnica/clubapi/internal/models"
	pkgauth "github.com/gymnica/clubapi/pkg/auth"
)

// MemberFinder is the member lookup the login path needs.
type MemberFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
}

// AdminCredentials are the configured admin console credentials.
type AdminCredentials struct {
	Username string
	Password string
}

// AuthService authenticates members and the admin. Every attempt runs
// through the lockout guard first; only genuine credential mismatches
// feed the failure counter — malformed requests are rejected by the
// handlers before this service is reached.
type AuthService struct {
	members MemberFinder
	guard   *guard.Guard
	tm      *auth.TokenManager
	admin   AdminCredentials
	logger  *slog.Logger
}

func NewAuthService(members MemberFinder, g *guard.Guard, tm *auth.TokenManager, admin AdminCredentials, logger *slog.Logger) *AuthService {
	return &AuthService{
		members: members,
		guard:   g,
		tm:      tm,
		admin:   admin,
		logger:  logger,
	}
}

// MemberLoginResult carries the session token and the member it
// identifies.
type MemberLoginResult struct {
	Token  string
	Member *models.Member
}

// checkLockout consults the guard and maps a block onto LockoutError.
func (s *AuthService) checkLockout(ctx context.Context, scope models.GuardScope, identity string) error {
	decision, err := s.guard.Check(ctx, scope, identity)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &models.LockoutError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

// CheckMemberLockout reports whether identity is currently locked out
// of member login. Handlers call it before reading the request body so
// a locked-out client sees the lockout even on a malformed request.
func (s *AuthService) CheckMemberLockout(ctx context.Context, identity string) error {
	return s.checkLockout(ctx, models.ScopeMemberLogin, identity)
}

// CheckAdminLockout is CheckMemberLockout for the admin console scope.
func (s *AuthService) CheckAdminLockout(ctx context.Context, identity string) error {
	return s.checkLockout(ctx, models.ScopeAdminLogin, identity)
}

// LoginMember authenticates a member by email and password. identity
// is the client address the guard keys on.
func (s *AuthService) LoginMember(ctx context.Context, email, password, identity string) (*MemberLoginResult, error) {
	if err := s.checkLockout(ctx, models.ScopeMemberLogin, identity); err != nil {
		return nil, err
	}

	member, err := s.members.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if member == nil || member.PasswordHash == "" ||
		pkgauth.ComparePassword(member.PasswordHash, password) != nil {
		if recordErr := s.guard.RecordFailure(ctx, models.ScopeMemberLogin, identity); recordErr != nil {
			return nil, recordErr
		}
		s.logger.Info("member login failed", slog.String("identity", identity))
		return nil, models.ErrUnauthorized
	}

	if err := s.guard.RecordSuccess(ctx, models.ScopeMemberLogin, identity); err != nil {
		return nil, err
	}

	token, err := s.tm.IssueMemberToken(member.ID, member.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("member login succeeded", slog.String("member_id", member.ID))
	return &MemberLoginResult{Token: token, Member: member}, nil
}

// LoginAdmin authenticates the admin console against the configured
// credentials.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password, identity string) (string, error) {
	if err := s.checkLockout(ctx, models.ScopeAdminLogin, identity); err != nil {
		return "", err
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !userOK || !passOK {
		if recordErr := s.guard.RecordFailure(ctx, models.ScopeAdminLogin, identity); recordErr != nil {
			return "", recordErr
		}
		s.logger.Warn("admin login failed", slog.String("identity", identity))
		return "", models.ErrUnauthorized
	}

	if err := s.guard.RecordSuccess(ctx, models.ScopeAdminLogin, identity); err != nil {
		return "", err
	}

	token, err := s.tm.IssueAdminToken()
	if err != nil {
		return "", err
	}

	s.logger.Info("admin login succeeded", slog.String("identity", identity))
	return token, nil
}

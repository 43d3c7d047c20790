package auth

import (
	"fmt"
	"time"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and validates the opaque session tokens that
// identify a request as a member or as the admin. The rest of the
// service only ever reads the resulting claims; how the principal got
// them is this package's business.
type TokenManager struct {
	secret string
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: secret, expiry: expiry}
}

// IssueMemberToken creates a session token for an authenticated member.
func (tm *TokenManager) IssueMemberToken(memberID, email string) (string, error) {
	return tm.sign(&models.TokenClaims{
		Role:     models.RoleMember,
		MemberID: memberID,
		Email:    email,
	})
}

// IssueAdminToken creates a session token for the admin console.
func (tm *TokenManager) IssueAdminToken() (string, error) {
	return tm.sign(&models.TokenClaims{Role: models.RoleAdmin})
}

func (tm *TokenManager) sign(claims *models.TokenClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

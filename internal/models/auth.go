package models

import "github.com/golang-jwt/jwt/v5"

// Principal roles carried in session tokens.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type TokenClaims struct {
	Role     string `json:"role"`
	MemberID string `json:"member_id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.IssueMemberToken("member1", "mario@example.com")
	require.NoError(t, err)

	called := false
	var principal *http.Request
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		principal = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	Middleware(tm)(inner).ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	claims := GetPrincipal(principal)
	require.NotNil(t, claims)
	assert.Equal(t, "member1", claims.MemberID)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	Middleware(tm)(okHandler(&called)).ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	tests := []string{
		"token-without-scheme",
		"Basic dXNlcjpwYXNz",
	}

	for _, header := range tests {
		called := false
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		Middleware(tm)(okHandler(&called)).ServeHTTP(w, req)

		assert.False(t, called, "header %q", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	called := false
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	Middleware(tm)(okHandler(&called)).ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireMember_AllowsMember(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.IssueMemberToken("member1", "mario@example.com")
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	Middleware(tm)(RequireMember(okHandler(&called))).ServeHTTP(w, req)

	assert.True(t, called)
}

func TestRequireMember_RejectsAdmin(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.IssueAdminToken()
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	Middleware(tm)(RequireMember(okHandler(&called))).ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.IssueAdminToken()
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	Middleware(tm)(RequireAdmin(okHandler(&called))).ServeHTTP(w, req)

	assert.True(t, called)
}

func TestRequireAdmin_RejectsMember(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, err := tm.IssueMemberToken("member1", "mario@example.com")
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	Middleware(tm)(RequireAdmin(okHandler(&called))).ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPrincipal_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/me", nil)
	assert.Nil(t, GetPrincipal(req))
}

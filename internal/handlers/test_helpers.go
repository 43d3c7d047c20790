package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAuthService implements AuthServiceInterface for handler tests
type MockAuthService struct {
	CheckMemberLockoutFunc func(ctx context.Context, identity string) error
	CheckAdminLockoutFunc  func(ctx context.Context, identity string) error
	LoginMemberFunc        func(ctx context.Context, email, password, identity string) (*services.MemberLoginResult, error)
	LoginAdminFunc         func(ctx context.Context, username, password, identity string) (string, error)
}

func (m *MockAuthService) CheckMemberLockout(ctx context.Context, identity string) error {
	if m.CheckMemberLockoutFunc != nil {
		return m.CheckMemberLockoutFunc(ctx, identity)
	}
	return nil
}

func (m *MockAuthService) CheckAdminLockout(ctx context.Context, identity string) error {
	if m.CheckAdminLockoutFunc != nil {
		return m.CheckAdminLockoutFunc(ctx, identity)
	}
	return nil
}

func (m *MockAuthService) LoginMember(ctx context.Context, email, password, identity string) (*services.MemberLoginResult, error) {
	if m.LoginMemberFunc != nil {
		return m.LoginMemberFunc(ctx, email, password, identity)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) LoginAdmin(ctx context.Context, username, password, identity string) (string, error) {
	if m.LoginAdminFunc != nil {
		return m.LoginAdminFunc(ctx, username, password, identity)
	}
	return "", models.ErrUnauthorized
}

// MockRegistrationService implements RegistrationService
type MockRegistrationService struct {
	RegisterFunc func(ctx context.Context, name, email, password, phone string) (*models.Member, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, name, email, password, phone string) (*models.Member, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password, phone)
	}
	return &models.Member{ID: "mock-member-id", Name: name, Email: email, Phone: phone}, nil
}

// MockRosterService implements RosterServiceInterface
type MockRosterService struct {
	RosterFunc             func(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error)
	ReplaceMonthRosterFunc func(ctx context.Context, course, month string, rows []*models.EnrollmentRow) ([]services.SavedRow, error)
	SaveSingleRowFunc      func(ctx context.Context, course, month string, row *models.EnrollmentRow) (string, int, error)
}

func (m *MockRosterService) Roster(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error) {
	if m.RosterFunc != nil {
		return m.RosterFunc(ctx, course, month)
	}
	return []*models.EnrollmentRow{}, nil
}

func (m *MockRosterService) ReplaceMonthRoster(ctx context.Context, course, month string, rows []*models.EnrollmentRow) ([]services.SavedRow, error) {
	if m.ReplaceMonthRosterFunc != nil {
		return m.ReplaceMonthRosterFunc(ctx, course, month, rows)
	}
	return []services.SavedRow{}, nil
}

func (m *MockRosterService) SaveSingleRow(ctx context.Context, course, month string, row *models.EnrollmentRow) (string, int, error) {
	if m.SaveSingleRowFunc != nil {
		return m.SaveSingleRowFunc(ctx, course, month, row)
	}
	return "mock-member-id", 0, nil
}

// NewTestRequest builds a request with a JSON body
func NewTestRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeEnvelope decodes the recorded response body and asserts the
// status code and envelope status field
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantCode int, wantStatus string) map[string]any {
	t.Helper()

	assert.Equal(t, wantCode, w.Code)

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, wantStatus, envelope["status"])
	return envelope
}

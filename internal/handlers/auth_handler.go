package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/services"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

// AuthServiceInterface defines the authentication business logic.
type AuthServiceInterface interface {
	CheckMemberLockout(ctx context.Context, identity string) error
	CheckAdminLockout(ctx context.Context, identity string) error
	LoginMember(ctx context.Context, email, password, identity string) (*services.MemberLoginResult, error)
	LoginAdmin(ctx context.Context, username, password, identity string) (string, error)
}

// RegistrationService creates member accounts.
type RegistrationService interface {
	Register(ctx context.Context, name, email, password, phone string) (*models.Member, error)
}

// AuthHandler handles registration and both login endpoints.
type AuthHandler struct {
	auth     AuthServiceInterface
	members  RegistrationService
	ipConfig *pkghttp.IPConfig
}

func NewAuthHandler(auth AuthServiceInterface, members RegistrationService, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		members:  members,
		ipConfig: ipConfig,
	}
}

// Register handles member signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Richiesta non valida")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Compila tutti i campi")
		return
	}

	_, err := h.members.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteBadRequest(w, "Email già esistente")
			return
		}
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteStatus(w, http.StatusCreated, "Registrazione completata", nil)
}

// Login handles member login. The lockout check runs before the body
// is read, so a locked-out client gets 429 even on a malformed
// request; malformed bodies and missing fields are then rejected
// before the guard's failure counter is ever touched.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	identity := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.auth.CheckMemberLockout(r.Context(), identity); err != nil {
		writeLoginError(w, err, "Email o Password errate")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Richiesta non valida")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Compila tutti i campi")
		return
	}

	result, err := h.auth.LoginMember(r.Context(), req.Email, req.Password, identity)
	if err != nil {
		writeLoginError(w, err, "Email o Password errate")
		return
	}

	pkghttp.WriteOK(w, "Login riuscito", pkghttp.Envelope{
		"token":        result.Token,
		"nome_cognome": result.Member.Name,
	})
}

// Logout acknowledges a member logout. Sessions are stateless bearer
// tokens, so the server side has nothing to tear down.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteOK(w, "Logout effettuato", nil)
}

// AdminLogin handles the admin console login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	identity := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.auth.CheckAdminLockout(r.Context(), identity); err != nil {
		writeLoginError(w, err, "Username o Password errate")
		return
	}

	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Richiesta non valida")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Compila tutti i campi")
		return
	}

	token, err := h.auth.LoginAdmin(r.Context(), req.Username, req.Password, identity)
	if err != nil {
		writeLoginError(w, err, "Username o Password errate")
		return
	}

	pkghttp.WriteOK(w, "Login admin riuscito", pkghttp.Envelope{"token": token})
}

// AdminLogout acknowledges an admin logout.
func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteOK(w, "Logout admin effettuato", nil)
}

// writeLoginError maps a login failure onto the response envelope.
// Lockouts carry the remaining seconds so clients can show a countdown.
func writeLoginError(w http.ResponseWriter, err error, badCredsMessage string) {
	var lockout *models.LockoutError
	switch {
	case errors.As(err, &lockout):
		pkghttp.WriteLockedOut(w,
			fmt.Sprintf("Superato il numero di tentativi: attendi %d secondi", lockout.RetryAfter),
			lockout.RetryAfter)
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, badCredsMessage)
	default:
		pkghttp.WriteInternalError(w, "Errore interno")
	}
}

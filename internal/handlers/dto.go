package handlers

import (
	"strings"

	"github.com/gymnica/clubapi/internal/models"
)

// RegisterRequest is the member signup payload.
type RegisterRequest struct {
	Name     string `json:"nome_cognome" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
	Phone    string `json:"phone" validate:"required,min=1"`
}

// LoginRequest is the member login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest is the admin console login payload.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RosterRowPayload is one roster entry as submitted by the admin
// console. The phone, card and certificate fields historically arrive
// under two names each; Normalize collapses the aliases into the
// canonical fields once, at this boundary.
type RosterRowPayload struct {
	FirstName string `json:"nome"`
	LastName  string `json:"cognome"`
	Email     string `json:"email"`
	Cell      string `json:"cell"`
	Cellulare string `json:"cellulare,omitempty"`
	CardRef   string `json:"tessera"`
	CardAlias string `json:"numero_tessera,omitempty"`
	CertDate  string `json:"dataCert"`
	CertAlias string `json:"data_certificato,omitempty"`
	Paid      bool   `json:"pagato"`
	Amount    string `json:"importo"`
}

// Normalize resolves aliases and returns the canonical row.
func (p *RosterRowPayload) Normalize() *models.EnrollmentRow {
	return &models.EnrollmentRow{
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     strings.TrimSpace(p.Email),
		Phone:     firstNonEmpty(p.Cell, p.Cellulare),
		CertRef:   firstNonEmpty(p.CardRef, p.CardAlias),
		CertDate:  firstNonEmpty(p.CertDate, p.CertAlias),
		Paid:      p.Paid,
		Amount:    p.Amount,
	}
}

// RosterRowResponse is one roster entry as rendered for the admin
// console, canonical field names only.
type RosterRowResponse struct {
	RowIndex  int    `json:"row_index"`
	MemberID  string `json:"id"`
	FirstName string `json:"nome"`
	LastName  string `json:"cognome"`
	Email     string `json:"email"`
	Cell      string `json:"cell"`
	CardRef   string `json:"tessera"`
	CertDate  string `json:"dataCert"`
	Paid      bool   `json:"pagato"`
	Amount    string `json:"importo"`
}

func rosterRowResponse(row *models.EnrollmentRow) RosterRowResponse {
	return RosterRowResponse{
		RowIndex:  row.SlotIndex,
		MemberID:  row.MemberID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Cell:      row.Phone,
		CardRef:   row.CertRef,
		CertDate:  row.CertDate,
		Paid:      row.Paid,
		Amount:    row.Amount,
	}
}

// ReplaceRosterRequest is the full-replace save for one month.
type ReplaceRosterRequest struct {
	Month string             `json:"mese"`
	Rows  []RosterRowPayload `json:"rows"`
}

// SingleRowRequest is the incremental single-row save.
type SingleRowRequest struct {
	Month string            `json:"mese"`
	Row   *RosterRowPayload `json:"row"`
}

// ReminderRequest is the bulk payment-reminder dispatch.
type ReminderRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
	Month  string   `json:"mese" validate:"required"`
}

// TotalsRequest sets the admin-entered monetary aggregates.
type TotalsRequest struct {
	Month           string  `json:"mese"`
	CashTotal       float64 `json:"total_cassa"`
	InstructorTotal float64 `json:"total_istruttore"`
}

// MemberResponse is a member account as rendered to clients.
type MemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"nome_cognome"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"data_creazione"`
}

func memberResponse(m *models.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

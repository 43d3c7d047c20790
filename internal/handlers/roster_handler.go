package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gymnica/clubapi/internal/models"
	"github.com/gymnica/clubapi/internal/services"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

// RosterServiceInterface is the enrollment ledger surface.
type RosterServiceInterface interface {
	Roster(ctx context.Context, course, month string) ([]*models.EnrollmentRow, error)
	ReplaceMonthRoster(ctx context.Context, course, month string, rows []*models.EnrollmentRow) ([]services.SavedRow, error)
	SaveSingleRow(ctx context.Context, course, month string, row *models.EnrollmentRow) (string, int, error)
}

// RosterHandler serves the per-course monthly roster endpoints.
type RosterHandler struct {
	roster   RosterServiceInterface
	baseline string
}

func NewRosterHandler(roster RosterServiceInterface, baseline string) *RosterHandler {
	return &RosterHandler{roster: roster, baseline: baseline}
}

// GetRoster lists a course's roster for one month, ordered by slot.
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	course := chi.URLParam(r, "course")
	month := r.URL.Query().Get("mese")
	if month == "" {
		month = h.baseline
	}

	rows, err := h.roster.Roster(r.Context(), course, month)
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	out := make([]RosterRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterRowResponse(row))
	}

	pkghttp.WriteOK(w, "", pkghttp.Envelope{"rows": out})
}

// ReplaceRoster replaces the full roster for the submitted month,
// propagating identity fields across the horizon when the month is the
// baseline.
func (h *RosterHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	course := chi.URLParam(r, "course")

	var req ReplaceRosterRequest
	if err := decodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Formato dati non valido")
		return
	}
	if req.Rows == nil {
		pkghttp.WriteBadRequest(w, "Formato dati non valido")
		return
	}
	if req.Month == "" {
		req.Month = h.baseline
	}

	rows := make([]*models.EnrollmentRow, 0, len(req.Rows))
	for i := range req.Rows {
		rows = append(rows, req.Rows[i].Normalize())
	}

	saved, err := h.roster.ReplaceMonthRoster(r.Context(), course, req.Month, rows)
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteOK(w, "Dati salvati correttamente", pkghttp.Envelope{"rows": saved})
}

// SaveSingleRow appends one row to a course month without propagation.
func (h *RosterHandler) SaveSingleRow(w http.ResponseWriter, r *http.Request) {
	course := chi.URLParam(r, "course")

	var req SingleRowRequest
	if err := decodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Formato dati non valido")
		return
	}
	if req.Row == nil {
		pkghttp.WriteBadRequest(w, "Nessuna riga inviata")
		return
	}
	if req.Month == "" {
		req.Month = h.baseline
	}

	row := req.Row.Normalize()
	if row.Email == "" {
		pkghttp.WriteBadRequest(w, "Email mancante")
		return
	}

	memberID, slotIndex, err := h.roster.SaveSingleRow(r.Context(), course, req.Month, row)
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteOK(w, "Riga salvata correttamente", pkghttp.Envelope{
		"user_id":   memberID,
		"row_index": slotIndex,
	})
}

// decodeJSON decodes a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

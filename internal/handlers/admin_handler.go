package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gymnica/clubapi/internal/models"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// MemberAdminService is the member surface the admin console uses.
type MemberAdminService interface {
	Profile(ctx context.Context, id string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]*models.Member, error)
}

// AttachmentSaver stores an uploaded file and returns its reference.
type AttachmentSaver interface {
	Save(memberID, filename string, r io.Reader) (string, error)
}

// AttachmentRefUpdater records the stored reference on the member row.
type AttachmentRefUpdater interface {
	UpdateAttachmentRef(ctx context.Context, id, ref string) error
}

// TotalsStore reads and writes the per-(course, month) aggregates.
type TotalsStore interface {
	Get(ctx context.Context, course, month string) (*models.CourseTotals, error)
	Upsert(ctx context.Context, totals *models.CourseTotals) error
}

// NotificationDispatcher queues fire-and-forget messages.
type NotificationDispatcher interface {
	Dispatch(to, subject, body string)
}

// AdminHandler serves the admin console: member listing, attachment
// upload, payment reminders and course totals.
type AdminHandler struct {
	members     MemberAdminService
	memberRefs  AttachmentRefUpdater
	attachments AttachmentSaver
	totals      TotalsStore
	notifier    NotificationDispatcher
	baseline    string
}

func NewAdminHandler(
	members MemberAdminService,
	memberRefs AttachmentRefUpdater,
	attachments AttachmentSaver,
	totals TotalsStore,
	notifier NotificationDispatcher,
	baseline string,
) *AdminHandler {
	return &AdminHandler{
		members:     members,
		memberRefs:  memberRefs,
		attachments: attachments,
		totals:      totals,
		notifier:    notifier,
		baseline:    baseline,
	}
}

// ListMembers returns every member account.
func (h *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.ListMembers(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	users := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		users = append(users, memberResponse(m))
	}

	pkghttp.WriteOK(w, "", pkghttp.Envelope{"users": users})
}

// UploadAttachment stores a training-plan file for a member and
// notifies them by email. The notification is fire-and-forget: a
// delivery failure never fails the upload.
func (h *AdminHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		pkghttp.WriteBadRequest(w, "Nessun file inviato")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Nessun file inviato")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		pkghttp.WriteBadRequest(w, "File senza nome")
		return
	}

	member, err := h.members.Profile(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Utente non trovato")
			return
		}
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	ref, err := h.attachments.Save(memberID, header.Filename, file)
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore salvataggio file")
		return
	}

	if err := h.memberRefs.UpdateAttachmentRef(r.Context(), memberID, ref); err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	if member.Email != "" {
		h.notifier.Dispatch(
			member.Email,
			"Hai ricevuto un file dalla Gymnica Fitness Club",
			fmt.Sprintf("Ciao %s,\n\nHai ricevuto un file dalla Gymnica Fitness Club. Puoi scaricarlo dal tuo profilo.", member.Name),
		)
	}

	pkghttp.WriteOK(w, "PDF caricato e email inviata", nil)
}

// SendPaymentReminder queues a reminder email to each address. The
// response reports what was queued; delivery itself is not observable.
func (h *AdminHandler) SendPaymentReminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Richiesta non valida")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "Dati mancanti")
		return
	}

	subject := fmt.Sprintf("Promemoria pagamento mese %s", req.Month)
	body := fmt.Sprintf("Ciao, stanno per scadere i termini di pagamento, ti ricordiamo di saldare il mese di %s.", req.Month)

	for _, email := range req.Emails {
		h.notifier.Dispatch(email, subject, body)
	}

	pkghttp.WriteOK(w, fmt.Sprintf("Inviate %d mail", len(req.Emails)), pkghttp.Envelope{
		"sent": req.Emails,
	})
}

// GetTotals returns the stored aggregates for a course month, zeros
// when none have been saved.
func (h *AdminHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	course := chi.URLParam(r, "course")
	month := r.URL.Query().Get("mese")
	if month == "" {
		month = h.baseline
	}

	totals, err := h.totals.Get(r.Context(), course, month)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteOK(w, "", pkghttp.Envelope{
				"totals": map[string]float64{"total_cassa": 0, "total_istruttore": 0},
			})
			return
		}
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteOK(w, "", pkghttp.Envelope{
		"totals": map[string]float64{
			"total_cassa":      totals.CashTotal,
			"total_istruttore": totals.InstructorTotal,
		},
	})
}

// SetTotals stores both aggregates for a course month.
func (h *AdminHandler) SetTotals(w http.ResponseWriter, r *http.Request) {
	course := chi.URLParam(r, "course")

	var req TotalsRequest
	if err := decodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Richiesta non valida")
		return
	}
	if req.Month == "" {
		req.Month = h.baseline
	}

	err := h.totals.Upsert(r.Context(), &models.CourseTotals{
		Course:          course,
		Month:           req.Month,
		CashTotal:       req.CashTotal,
		InstructorTotal: req.InstructorTotal,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteOK(w, "Totali salvati", nil)
}

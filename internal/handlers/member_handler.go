package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gymnica/clubapi/internal/auth"
	"github.com/gymnica/clubapi/internal/models"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

// ProfileService reads member accounts for self-service.
type ProfileService interface {
	Profile(ctx context.Context, id string) (*models.Member, error)
}

// AttachmentOpener retrieves a stored attachment by reference.
type AttachmentOpener interface {
	Open(ref string) (*os.File, error)
}

// MemberHandler serves the authenticated member's own data.
type MemberHandler struct {
	members     ProfileService
	attachments AttachmentOpener
}

func NewMemberHandler(members ProfileService, attachments AttachmentOpener) *MemberHandler {
	return &MemberHandler{members: members, attachments: attachments}
}

// Me returns the authenticated member's profile.
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetPrincipal(r)

	member, err := h.members.Profile(r.Context(), claims.MemberID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Utente non trovato")
			return
		}
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	pkghttp.WriteOK(w, "", pkghttp.Envelope{"user": memberResponse(member)})
}

// Attachment streams the member's stored training plan. A member with
// no file on record gets a 200 error envelope, not a 404: the client
// treats "nothing uploaded yet" as a normal state.
func (h *MemberHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetPrincipal(r)

	member, err := h.members.Profile(r.Context(), claims.MemberID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Utente non trovato")
			return
		}
		pkghttp.WriteInternalError(w, "Errore interno")
		return
	}

	if member.AttachmentRef == nil || *member.AttachmentRef == "" {
		pkghttp.WriteErrorEnvelope(w, http.StatusOK, "Nessun file disponibile", nil)
		return
	}

	f, err := h.attachments.Open(*member.AttachmentRef)
	if err != nil {
		pkghttp.WriteErrorEnvelope(w, http.StatusOK, "File non trovato sul server", nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(f.Name())+`"`)
	_, _ = io.Copy(w, f)
}

package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/httputil"
	"github.com/sendai-ikuei-track/site-server/internal/model"
)

type InquirySubmitter interface {
	Submit(ctx context.Context, identity string, body io.Reader) (*model.Inquiry, error)
}

type ContactHandler struct {
	contact InquirySubmitter
}

func NewContactHandler(contact InquirySubmitter) *ContactHandler {
	return &ContactHandler{contact: contact}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)

	return r
}

// POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := httputil.ClientIdentity(r)

	inquiry, err := h.contact.Submit(r.Context(), identity, r.Body)
	if err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Str("ip", identity).Msg("contact submission rejected")
		writeError(w, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("inquiryId", inquiry.ID).
		Str("category", inquiry.Category).
		Msg("contact submission accepted")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": MsgContactAccepted,
	})
}

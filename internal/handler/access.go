package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sendai-ikuei-track/site-server/internal/audit"
	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
	"github.com/sendai-ikuei-track/site-server/internal/middleware"
	"github.com/sendai-ikuei-track/site-server/internal/model"
	"github.com/sendai-ikuei-track/site-server/internal/telemetry"
)

type CredentialService interface {
	IssueCredential(ctx context.Context, password string) (*model.Credential, error)
	VerifyCredential(token string) bool
}

type AccessHandler struct {
	access       CredentialService
	throttle     func(http.Handler) http.Handler
	isProduction bool
}

// NewAccessHandler wires the exclusive content endpoints. throttle wraps
// password attempts and may be nil.
func NewAccessHandler(access CredentialService, throttle func(http.Handler) http.Handler, isProduction bool) *AccessHandler {
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}
	return &AccessHandler{
		access:       access,
		throttle:     throttle,
		isProduction: isProduction,
	}
}

func (h *AccessHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.throttle).Post("/", h.Issue)
	r.Get("/", h.Status)
	r.Delete("/", h.Revoke)

	return r
}

type issueRequest struct {
	Password any `json:"password"`
}

// attemptedPassword returns the submitted password. Falsy JSON values count
// as no password. Any other non-string can never match.
func attemptedPassword(v any) (string, bool) {
	switch p := v.(type) {
	case nil:
		return "", true
	case string:
		return p, true
	case bool:
		return "", !p
	case float64:
		return "", p == 0
	}
	return "", false
}

// POST /api/auth/exclusive
func (h *AccessHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var cred *model.Credential
	var err error
	if password, ok := attemptedPassword(req.Password); ok {
		cred, err = h.access.IssueCredential(r.Context(), password)
	} else {
		err = apperrors.Unauthorized(apperrors.MsgWrongPassword)
	}
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			telemetry.Count(r.Context(), telemetry.GetMetrics().ExclusiveLoginTotal, "result", "failure")
			audit.LogFromRequest(r, audit.Event{Type: audit.EventExclusiveLoginFailure})
		}
		writeError(w, err)
		return
	}

	telemetry.Count(r.Context(), telemetry.GetMetrics().ExclusiveLoginTotal, "result", "success")
	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventExclusiveLoginSuccess,
		Details: map[string]any{"expires_at": cred.ExpiresAt},
	})

	middleware.SetCredentialCookie(w, r, cred, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": MsgAuthenticated,
	})
}

// GET /api/auth/exclusive
func (h *AccessHandler) Status(w http.ResponseWriter, r *http.Request) {
	token := middleware.CredentialToken(r)
	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": h.access.VerifyCredential(token),
	})
}

// DELETE /api/auth/exclusive
func (h *AccessHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	middleware.ClearCredentialCookie(w, r, h.isProduction)
	audit.LogFromRequest(r, audit.Event{Type: audit.EventExclusiveLogout})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

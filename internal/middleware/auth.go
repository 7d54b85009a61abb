package middleware

import (
	"net/http"

	"github.com/sendai-ikuei-track/site-server/internal/audit"
	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
)

type CredentialVerifier interface {
	VerifyCredential(token string) bool
}

// ExclusiveGate lets a request through only when it carries a valid
// exclusive content credential.
type ExclusiveGate struct {
	verifier CredentialVerifier
}

func NewExclusiveGate(verifier CredentialVerifier) *ExclusiveGate {
	return &ExclusiveGate{verifier: verifier}
}

func (m *ExclusiveGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := CredentialToken(r)
		if token == "" || !m.verifier.VerifyCredential(token) {
			if token != "" {
				audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			}
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"authenticated": false,
				"error":         apperrors.MsgNotAuthenticated,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

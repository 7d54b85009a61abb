package middleware

import (
	"net/http"
	"time"

	"github.com/sendai-ikuei-track/site-server/internal/model"
)

const ExclusiveAuthCookie = "exclusive_auth"

// SetCredentialCookie stores cred on the client for the whole site. The
// cookie is Secure in production and whenever the request came over TLS.
func SetCredentialCookie(w http.ResponseWriter, r *http.Request, cred *model.Credential, isProduction bool) {
	maxAge := int(cred.ExpiresAt.Sub(cred.IssuedAt) / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     ExclusiveAuthCookie,
		Value:    cred.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isProduction || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearCredentialCookie(w http.ResponseWriter, r *http.Request, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ExclusiveAuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// CredentialToken returns the credential carried by the request, if any.
func CredentialToken(r *http.Request) string {
	cookie, err := r.Cookie(ExclusiveAuthCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

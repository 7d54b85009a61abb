package httputil

import (
	"net/http"
	"strings"
)

// UnknownClient is the identity of a request that carries no proxy headers.
const UnknownClient = "unknown"

// ClientIdentity returns the caller's address as reported by the edge
// proxy: the first X-Forwarded-For entry, then X-Real-IP.
func ClientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}

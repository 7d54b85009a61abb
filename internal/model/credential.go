package model

import "time"

// Credential is a signed proof that the caller knew the exclusive content
// password. The token is opaque to clients and is never stored server side.
type Credential struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

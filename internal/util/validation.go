package util

import (
	"regexp"
	"unicode/utf8"
)

const MaxEmailLength = 254

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail performs the same loose local@domain.tld check the contact
// form does client side, plus the RFC 5321 length cap.
func IsValidEmail(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxEmailLength {
		return false
	}
	return emailRegex.MatchString(s)
}

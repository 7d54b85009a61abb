package model

import "time"

// ContactCategories lists the categories offered by the contact form. Other
// values are accepted as free text.
var ContactCategories = []string{
	"入部について",
	"応援・ご支援について",
	"プレス・取材について",
	"その他",
}

// Inquiry is one sanitized contact form submission. It lives only for the
// duration of the request.
type Inquiry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Category   string    `json:"category"`
	Message    string    `json:"message"`
	ClientIP   string    `json:"clientIp"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// IsKnownCategory reports whether the category is one of the form's options.
func (i *Inquiry) IsKnownCategory() bool {
	for _, c := range ContactCategories {
		if i.Category == c {
			return true
		}
	}
	return false
}

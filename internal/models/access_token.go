package models

import (
	"time"
)

// AccessToken represents one single-use grant of form access to one email
// address. The token string is globally unique across all forms and is the
// sole redemption credential; the email is kept for audit and operator
// resend, not for validation lookups.
type AccessToken struct {
	ID        string     `json:"id"`
	FormID    string     `json:"form_id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsUsed reports whether the token has been consumed. Used never reverts
// to false once set.
func (t *AccessToken) IsUsed() bool {
	return t.Used
}

package domain

import (
	"strings"
	"time"
)

// User represents a registered account in the system.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"userName"`
	NormalizedUsername string    `json:"-"`
	Email              string    `json:"email"`
	NormalizedEmail    string    `json:"-"`
	PasswordHash       string    `json:"-"`
	SecurityStamp      string    `json:"-"`
	EmailConfirmed     bool      `json:"emailConfirmed"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Normalize returns the canonical uppercase form used for uniqueness checks
// on usernames and email addresses.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

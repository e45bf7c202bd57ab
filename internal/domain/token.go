package domain

import "time"

// Token purposes for single-use action tokens delivered by email.
const (
	TokenPurposeResetPassword = "reset-password"
	TokenPurposeConfirmEmail  = "confirm-email"
)

// ActionToken is a stored single-use token for password reset or email
// confirmation. Only the SHA-256 hash of the token is persisted.
type ActionToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Purpose    string     `json:"purpose"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SignedToken is an issued access token together with its expiry.
type SignedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiration"`
}

// TokenPair holds an access token and an opaque refresh credential.
type TokenPair struct {
	AccessToken  SignedToken `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

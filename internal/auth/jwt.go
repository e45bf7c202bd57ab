package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
)

// ErrInvalidToken is returned when a token fails signature, structure, or
// lifetime checks. Callers map it to an unauthorized response.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the claims carried by an access token. Roles are a
// snapshot taken at issuance time; they are not refreshed when the account's
// memberships change.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Config holds the immutable signing configuration for the token manager.
type Config struct {
	SecurityKey   string
	Issuer        string
	Audience      string
	ExpiryMinutes int
}

// Manager issues and validates signed access tokens.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

// NewManager creates a token manager from the given configuration.
func NewManager(cfg Config) *Manager {
	return &Manager{
		secret:   []byte(cfg.SecurityKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   time.Duration(cfg.ExpiryMinutes) * time.Minute,
	}
}

// Issue creates a signed access token for the given subject carrying the
// given role set. Every issuance gets a fresh jti.
func (m *Manager) Issue(username string, roles []string) (domain.SignedToken, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.expiry)

	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.New().String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return domain.SignedToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return domain.SignedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate parses and checks an access token. Signature, claim structure,
// issuer, audience, and a non-empty subject are always verified; the expiry
// is checked only when enforceLifetime is true. The refresh path passes
// false so an expired token can still be exchanged.
func (m *Manager) Validate(tokenString string, enforceLifetime bool) (*Claims, error) {
	// Registered-claim checks are done by hand below so the lifetime check
	// can be switched off without forking the parsing logic.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	}
	if !audienceContains(claims.Audience, m.audience) {
		return nil, fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	}
	if enforceLifetime {
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now().UTC()) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
	}

	return claims, nil
}

// Refresh exchanges a presented token for a fresh one. The old token's
// lifetime is intentionally not enforced; signature and structure must still
// hold. Subject and roles are taken from the presented token, so role
// changes made after the original issuance do not show up here. The returned
// refresh credential is opaque random material handed to the client; it is
// not persisted server side.
func (m *Manager) Refresh(tokenString string) (domain.TokenPair, error) {
	claims, err := m.Validate(tokenString, false)
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, err := m.Issue(claims.Subject, claims.Roles)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	usernameKey contextKeyType = "username"
	rolesKey    contextKeyType = "roles"
)

// Identity represents the claims extracted from a validated bearer token.
// Roles is a snapshot taken at token issuance; it is a set, not a tier.
type Identity struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// TokenValidator validates a bearer token and returns the identity it carries.
// The service injects its own validation logic so this package stays free of
// signing-key knowledge.
type TokenValidator func(token string) (*Identity, error)

// Auth middleware requires a valid bearer token and injects the identity
// into the request context. Requests without a valid token get 401.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, "missing or malformed authorization header")
				return
			}

			ident, err := validate(token)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), ident)))
		})
	}
}

// OptionalAuth attaches an identity to the context when a valid bearer token
// is presented, and otherwise lets the request through anonymously. Logout
// uses this: a caller without a session is treated as already logged out.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if ident, err := validate(token); err == nil {
					r = r.WithContext(withIdentity(r.Context(), ident))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole middleware checks that the authenticated identity holds at
// least one of the given roles. Membership is a set: a user may hold several
// roles and any match suffices.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range RolesFromContext(r.Context()) {
				if _, ok := roleSet[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "FORBIDDEN",
				"message": "insufficient permissions",
			})
		})
	}
}

// UsernameFromContext extracts the authenticated username from the request context.
func UsernameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(usernameKey).(string); ok {
		return name
	}
	return ""
}

// RolesFromContext extracts the role snapshot from the request context.
func RolesFromContext(ctx context.Context) []string {
	if roles, ok := ctx.Value(rolesKey).([]string); ok {
		return roles
	}
	return nil
}

func withIdentity(ctx context.Context, ident *Identity) context.Context {
	ctx = context.WithValue(ctx, usernameKey, ident.Username)
	return context.WithValue(ctx, rolesKey, ident.Roles)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}

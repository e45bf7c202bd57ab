package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jkstudio99/DropStockAPI/internal/auth"
	"github.com/jkstudio99/DropStockAPI/internal/domain"
	"github.com/jkstudio99/DropStockAPI/internal/event"
	"github.com/jkstudio99/DropStockAPI/internal/mailer"
	"github.com/jkstudio99/DropStockAPI/internal/repository"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Action token lifetimes.
const (
	resetTokenTTL   = 24 * time.Hour
	confirmTokenTTL = 72 * time.Hour
)

// AuthConfig holds the callback links embedded in outbound mail.
type AuthConfig struct {
	ResetPasswordURL string
	ConfirmEmailURL  string
}

// AuthService implements registration, login, logout, token refresh and the
// password-reset and email-confirmation flows.
type AuthService struct {
	cfg          AuthConfig
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	tokenRepo    repository.ActionTokenRepository
	tokenManager *auth.Manager
	mail         mailer.Mailer
	producer     *event.Producer
	logger       *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	cfg AuthConfig,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokenRepo repository.ActionTokenRepository,
	tokenManager *auth.Manager,
	mail mailer.Mailer,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		cfg:          cfg,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		tokenRepo:    tokenRepo,
		tokenManager: tokenManager,
		mail:         mail,
		producer:     producer,
		logger:       logger,
	}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginOutput is the successful login result. The identity summary is
// informational; downstream callers must validate the token itself.
type LoginOutput struct {
	Token    domain.SignedToken
	Username string
	Email    string
	Roles    []string
}

// Register creates a new account and grants it exactly the requested role.
// Username uniqueness is checked before email uniqueness; both checks are
// early exits, and the store's unique indexes settle any registration race.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, role string) error {
	if !domain.IsValidRole(role) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown role %q", role))
	}

	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return apperrors.AlreadyExists("user", "username", input.Username)
	}
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return apperrors.AlreadyExists("user", "email", input.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                 uuid.New().String(),
		Username:           input.Username,
		NormalizedUsername: domain.Normalize(input.Username),
		Email:              input.Email,
		NormalizedEmail:    domain.Normalize(input.Email),
		PasswordHash:       string(hashedPassword),
		SecurityStamp:      uuid.New().String(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	roleID, err := s.roleRepo.Ensure(ctx, role)
	if err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	if err := s.roleRepo.AddToRole(ctx, user.ID, roleID); err != nil {
		return fmt.Errorf("bind role: %w", err)
	}

	// Confirmation mail failure does not fail the registration.
	if err := s.sendConfirmationMail(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserRegistered(ctx, user, []string{role}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", role),
	)

	return nil
}

// Login verifies credentials and issues an access token carrying the
// account's current role memberships. Absent user and wrong password are
// reported identically so callers cannot probe for registered usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	roles, err := s.roleRepo.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("gather roles: %w", err)
	}

	token, err := s.tokenManager.Issue(user.Username, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginOutput{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}, nil
}

// Logout rotates the account's security stamp. The stamp is not embedded in
// access tokens, so already-issued tokens keep validating until expiry; only
// flows that re-check the stamp are cut off. A stale identity whose record
// is gone reports not found.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperrors.NotFound("user", username)
	}

	if err := s.userRepo.UpdateSecurityStamp(ctx, user.ID, uuid.New().String()); err != nil {
		return fmt.Errorf("rotate security stamp: %w", err)
	}

	if err := s.producer.PublishUserLoggedOut(ctx, user.ID, user.Username); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_out event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", user.ID))
	return nil
}

// RefreshToken exchanges a presented token for a fresh access token without
// enforcing the old token's lifetime. Roles come from the presented token,
// not the store, so membership changes do not show up until the next login.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (*domain.TokenPair, error) {
	pair, err := s.tokenManager.Refresh(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	s.logger.InfoContext(ctx, "token refreshed")
	return &pair, nil
}

// Introspect validates a token with full lifetime enforcement and returns
// its identity claims.
func (s *AuthService) Introspect(token string) (username string, roles []string, err error) {
	claims, err := s.tokenManager.Validate(token, true)
	if err != nil {
		return "", nil, apperrors.Unauthorized("invalid token")
	}
	return claims.Subject, claims.Roles, nil
}

// ForgotPassword issues a single-use reset token and mails a callback link.
// An unknown email reports bad request; this endpoint deliberately reveals
// address existence, unlike login.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.InvalidInput("no account matches this email address")
	}

	plainToken, err := s.issueActionToken(ctx, user.ID, domain.TokenPurposeResetPassword, resetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link := callbackLink(s.cfg.ResetPasswordURL, user.Email, plainToken)
	body := fmt.Sprintf("<p>Click the link below to reset your password.</p><p><a href=%q>Reset password</a></p>", link)

	// Delivery failure is logged, not surfaced; the caller sees success once
	// dispatch is attempted.
	if err := s.mail.Send(ctx, user.Email, "Reset your password", body); err != nil {
		s.logger.ErrorContext(ctx, "failed to send reset mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserPasswordReset(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword redeems a reset token and replaces the password. The token
// row is consumed atomically, so a token redeems at most once.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.InvalidInput("no account matches this email address")
	}

	now := time.Now().UTC()
	if err := s.tokenRepo.Consume(ctx, user.ID, domain.TokenPurposeResetPassword, hashToken(token), now); err != nil {
		return apperrors.InvalidInput("invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword), uuid.New().String()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID))
	return nil
}

// ConfirmEmail redeems a confirmation token and marks the account confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, token string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.InvalidInput("no account matches this email address")
	}

	now := time.Now().UTC()
	if err := s.tokenRepo.Consume(ctx, user.ID, domain.TokenPurposeConfirmEmail, hashToken(token), now); err != nil {
		return apperrors.InvalidInput("invalid or expired confirmation token")
	}

	if err := s.userRepo.SetEmailConfirmed(ctx, user.ID); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}

	s.logger.InfoContext(ctx, "email confirmed", slog.String("user_id", user.ID))
	return nil
}

func (s *AuthService) sendConfirmationMail(ctx context.Context, user *domain.User) error {
	plainToken, err := s.issueActionToken(ctx, user.ID, domain.TokenPurposeConfirmEmail, confirmTokenTTL)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}

	link := callbackLink(s.cfg.ConfirmEmailURL, user.Email, plainToken)
	body := fmt.Sprintf("<p>Welcome! Confirm your email address using the link below.</p><p><a href=%q>Confirm email</a></p>", link)

	return s.mail.Send(ctx, user.Email, "Confirm your email address", body)
}

// issueActionToken stores the hash of a freshly generated opaque token and
// returns the plaintext for the mail link.
func (s *AuthService) issueActionToken(ctx context.Context, userID, purpose string, ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now().UTC()
	record := &domain.ActionToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hashToken(plain),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("store action token: %w", err)
	}

	return plain, nil
}

// hashToken returns the hex SHA-256 digest of a token. Only digests are
// persisted; a leaked token table cannot be replayed.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func callbackLink(base, email, token string) string {
	values := url.Values{}
	values.Set("email", email)
	values.Set("token", token)
	return base + "?" + values.Encode()
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
	pkgkafka "github.com/jkstudio99/DropStockAPI/pkg/kafka"
	"github.com/jkstudio99/DropStockAPI/pkg/middleware"

	"github.com/jkstudio99/DropStockAPI/internal/auth"
	"github.com/jkstudio99/DropStockAPI/internal/domain"
	"github.com/jkstudio99/DropStockAPI/internal/event"
	"github.com/jkstudio99/DropStockAPI/internal/service"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string) error {
	args := m.Called(ctx, userID, passwordHash, securityStamp)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateSecurityStamp(ctx context.Context, userID, securityStamp string) error {
	args := m.Called(ctx, userID, securityStamp)
	return args.Error(0)
}

func (m *mockUserRepo) SetEmailConfirmed(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockRoleRepo struct {
	mock.Mock
}

func (m *mockRoleRepo) Ensure(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockRoleRepo) AddToRole(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *mockRoleRepo) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *domain.ActionToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) Consume(ctx context.Context, userID, purpose, tokenHash string, now time.Time) error {
	args := m.Called(ctx, userID, purpose, tokenHash, now)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// ============================================================================
// Test Helpers
// ============================================================================

type authFixture struct {
	userRepo  *mockUserRepo
	roleRepo  *mockRoleRepo
	tokenRepo *mockTokenRepo
	mail      *mockMailer
	manager   *auth.Manager
	router    http.Handler
}

func authTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func authTestEventProducer() *event.Producer {
	logger := authTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func authTestManager() *auth.Manager {
	return auth.NewManager(auth.Config{
		SecurityKey:   "test-secret-key-at-least-32-characters-long",
		Issuer:        "dropstock-api",
		Audience:      "dropstock-clients",
		ExpiryMinutes: 15,
	})
}

// newAuthFixture wires a handler over the real service with mocked
// collaborators and a router that mirrors the production authentication routes.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		userRepo:  new(mockUserRepo),
		roleRepo:  new(mockRoleRepo),
		tokenRepo: new(mockTokenRepo),
		mail:      new(mockMailer),
		manager:   authTestManager(),
	}

	logger := authTestLogger()
	svc := service.NewAuthService(
		service.AuthConfig{
			ResetPasswordURL: "https://dropstock.example/reset-password",
			ConfirmEmailURL:  "https://dropstock.example/confirm-email",
		},
		f.userRepo, f.roleRepo, f.tokenRepo,
		f.manager, f.mail, authTestEventProducer(), logger,
	)

	handler := NewAuthHandler(svc, func(ctx context.Context) error { return nil }, logger)

	tokenValidator := func(token string) (*middleware.Identity, error) {
		claims, err := f.manager.Validate(token, true)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{Username: claims.Subject, Roles: claims.Roles}, nil
	}

	r := chi.NewRouter()
	r.Route("/api/authentication", func(r chi.Router) {
		r.Get("/testconnect", handler.TestConnect)
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/register-user", handler.RegisterUser)
			r.Post("/register-manager", handler.RegisterManager)
			r.Post("/register-admin", handler.RegisterAdmin)
			r.Post("/login", handler.Login)
			r.Post("/refresh-token", handler.RefreshToken)
			r.Post("/validate-token", handler.ValidateToken)
			r.Post("/forgot-password", handler.ForgotPassword)
			r.Post("/reset-password", handler.ResetPassword)
			r.Post("/confirm-email", handler.ConfirmEmail)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(tokenValidator))
			r.Post("/logout", handler.Logout)
		})
	})
	f.router = r

	return f
}

func (f *authFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

const authTestUserID = "550e8400-e29b-41d4-a716-446655440000"

func confirmedUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	now := time.Now().UTC()
	return &domain.User{
		ID:                 authTestUserID,
		Username:           "alice",
		NormalizedUsername: "ALICE",
		Email:              "alice@example.com",
		NormalizedEmail:    "ALICE@EXAMPLE.COM",
		PasswordHash:       string(hash),
		SecurityStamp:      "stamp-1",
		EmailConfirmed:     true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func validRegisterBody() map[string]string {
	return map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "S3cret!pass",
		"confirmPassword": "S3cret!pass",
	}
}

// ============================================================================
// Registration Tests
// ============================================================================

func TestRegisterUser_Success(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, assertNotFoundErr())
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, assertNotFoundErr())
	f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	f.roleRepo.On("Ensure", mock.Anything, domain.RoleUser).Return("role-id-1", nil)
	f.roleRepo.On("AddToRole", mock.Anything, mock.AnythingOfType("string"), "role-id-1").Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ActionToken")).Return(nil)
	f.mail.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/register-user", validRegisterBody(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, "User registered successfully", body["message"])
	f.userRepo.AssertExpectations(t)
	f.roleRepo.AssertExpectations(t)
}

func TestRegisterManager_GrantsManagerRole(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, assertNotFoundErr())
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, assertNotFoundErr())
	f.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.roleRepo.On("Ensure", mock.Anything, domain.RoleManager).Return("role-id-2", nil)
	f.roleRepo.On("AddToRole", mock.Anything, mock.Anything, "role-id-2").Return(nil)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/register-manager", validRegisterBody(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.roleRepo.AssertCalled(t, "Ensure", mock.Anything, domain.RoleManager)
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(confirmedUser("x"), nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/register-user", validRegisterBody(), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Error", body["status"])
	assert.Equal(t, "Username already exists!", body["message"])
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, assertNotFoundErr())
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(confirmedUser("x"), nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/register-user", validRegisterBody(), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email already exists!", body["message"])
}

func TestRegisterUser_PasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)

	body := validRegisterBody()
	body["confirmPassword"] = "different"

	rec := f.do(t, http.MethodPost, "/api/authentication/register-user", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.userRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestRegisterUser_RejectsNonJSONContentType(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/authentication/register-user", bytes.NewBufferString("username=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("S3cret!pass")
	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	f.roleRepo.On("RolesForUser", mock.Anything, user.ID).Return([]string{domain.RoleUser, domain.RoleManager}, nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/login",
		map[string]string{"username": "alice", "password": "S3cret!pass"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expiration"])

	userData, ok := body["userData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", userData["userName"])
	assert.Equal(t, "alice@example.com", userData["email"])
	assert.ElementsMatch(t, []any{domain.RoleUser, domain.RoleManager}, userData["roles"])

	// The issued token must pass full validation.
	claims, err := f.manager.Validate(body["token"].(string), true)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(confirmedUser("S3cret!pass"), nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid login attempt", body["message"])
}

// The response for an unknown account is byte-identical to a wrong password,
// so login cannot be used to probe which usernames exist.
func TestLogin_UnknownUserIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(confirmedUser("S3cret!pass"), nil)
	f.userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, assertNotFoundErr())

	wrongPass := f.do(t, http.MethodPost, "/api/authentication/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	unknown := f.do(t, http.MethodPost, "/api/authentication/login",
		map[string]string{"username": "ghost", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, unknown.Code, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

// ============================================================================
// Logout Tests
// ============================================================================

func TestLogout_WithoutToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/authentication/logout", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User not logged in", body["message"])
}

func TestLogout_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("x")
	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	f.userRepo.On("UpdateSecurityStamp", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

	token := issueToken(t, f.manager, "alice", []string{domain.RoleUser})
	rec := f.do(t, http.MethodPost, "/api/authentication/logout", nil,
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User logged out!", body["message"])
	f.userRepo.AssertCalled(t, "UpdateSecurityStamp", mock.Anything, user.ID, mock.AnythingOfType("string"))
}

func TestLogout_StaleIdentity(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, assertNotFoundErr())

	token := issueToken(t, f.manager, "alice", []string{domain.RoleUser})
	rec := f.do(t, http.MethodPost, "/api/authentication/logout", nil,
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User not found", body["message"])
}

// ============================================================================
// Token Endpoint Tests
// ============================================================================

func TestRefreshToken_AcceptsExpiredToken(t *testing.T) {
	f := newAuthFixture(t)

	expired := auth.NewManager(auth.Config{
		SecurityKey:   "test-secret-key-at-least-32-characters-long",
		Issuer:        "dropstock-api",
		Audience:      "dropstock-clients",
		ExpiryMinutes: -5,
	})
	token := issueToken(t, expired, "alice", []string{domain.RoleUser})

	rec := f.do(t, http.MethodPost, "/api/authentication/refresh-token",
		map[string]string{"token": token}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])

	claims, err := f.manager.Validate(body["accessToken"].(string), true)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestRefreshToken_RejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/authentication/refresh-token",
		map[string]string{"token": "not-a-jwt"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid refresh token", body["message"])
}

func TestValidateToken_Valid(t *testing.T) {
	f := newAuthFixture(t)

	token := issueToken(t, f.manager, "alice", []string{domain.RoleUser, domain.RoleAdmin})
	rec := f.do(t, http.MethodPost, "/api/authentication/validate-token",
		map[string]string{"token": token}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, "alice", body["userName"])
	assert.ElementsMatch(t, []any{domain.RoleUser, domain.RoleAdmin}, body["roles"])
}

func TestValidateToken_Expired(t *testing.T) {
	f := newAuthFixture(t)

	expired := auth.NewManager(auth.Config{
		SecurityKey:   "test-secret-key-at-least-32-characters-long",
		Issuer:        "dropstock-api",
		Audience:      "dropstock-clients",
		ExpiryMinutes: -5,
	})
	token := issueToken(t, expired, "alice", []string{domain.RoleUser})

	rec := f.do(t, http.MethodPost, "/api/authentication/validate-token",
		map[string]string{"token": token}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Error", body["status"])
	assert.Equal(t, "Token is not valid", body["message"])
}

// ============================================================================
// Password Reset and Email Confirmation Tests
// ============================================================================

func TestForgotPassword_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("x")
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	f.tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ActionToken")).Return(nil)
	f.mail.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/forgot-password",
		map[string]string{"email": "alice@example.com"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Password reset link has been sent to your email.", body["message"])
	f.mail.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, assertNotFoundErr())

	rec := f.do(t, http.MethodPost, "/api/authentication/forgot-password",
		map[string]string{"email": "ghost@example.com"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User with this email does not exist.", body["message"])
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("old-password")
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	f.tokenRepo.On("Consume", mock.Anything, user.ID, domain.TokenPurposeResetPassword, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	f.userRepo.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/reset-password", map[string]string{
		"email":           "alice@example.com",
		"token":           "some-reset-token",
		"newPassword":     "N3w!password",
		"confirmPassword": "N3w!password",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Password has been reset successfully.", body["message"])
	f.userRepo.AssertExpectations(t)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("old-password")
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	f.tokenRepo.On("Consume", mock.Anything, user.ID, domain.TokenPurposeResetPassword, mock.AnythingOfType("string"), mock.Anything).
		Return(assertNotFoundErr())

	rec := f.do(t, http.MethodPost, "/api/authentication/reset-password", map[string]string{
		"email":           "alice@example.com",
		"token":           "stale-token",
		"newPassword":     "N3w!password",
		"confirmPassword": "N3w!password",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmEmail_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := confirmedUser("x")
	f.userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	f.tokenRepo.On("Consume", mock.Anything, user.ID, domain.TokenPurposeConfirmEmail, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	f.userRepo.On("SetEmailConfirmed", mock.Anything, user.ID).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/authentication/confirm-email",
		map[string]string{"email": "alice@example.com", "token": "confirm-token"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email has been confirmed successfully.", body["message"])
}

// ============================================================================
// Connectivity Probe Tests
// ============================================================================

func TestTestConnect_Connected(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/api/authentication/testconnect", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Connected", body["message"])
}

func TestTestConnect_StoreDown(t *testing.T) {
	logger := authTestLogger()
	svc := service.NewAuthService(
		service.AuthConfig{},
		new(mockUserRepo), new(mockRoleRepo), new(mockTokenRepo),
		authTestManager(), new(mockMailer), authTestEventProducer(), logger,
	)
	handler := NewAuthHandler(svc, func(ctx context.Context) error {
		return errors.New("connection refused")
	}, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/authentication/testconnect", nil)
	rec := httptest.NewRecorder()
	handler.TestConnect(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Not Connected", body["message"])
}

// ============================================================================
// Helpers
// ============================================================================

func issueToken(t *testing.T, m *auth.Manager, username string, roles []string) string {
	t.Helper()
	signed, err := m.Issue(username, roles)
	require.NoError(t, err)
	return signed.Token
}

func assertNotFoundErr() error {
	return apperrors.NotFound("user", "missing")
}

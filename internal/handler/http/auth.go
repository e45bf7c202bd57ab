package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
	"github.com/jkstudio99/DropStockAPI/pkg/middleware"
	"github.com/jkstudio99/DropStockAPI/pkg/validator"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	"github.com/jkstudio99/DropStockAPI/internal/service"
)

// AuthHandler handles HTTP requests for the authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
	dbPing  func(ctx context.Context) error
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication HTTP handler. dbPing backs the
// connectivity probe endpoint.
func NewAuthHandler(svc *service.AuthService, dbPing func(ctx context.Context) error, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, dbPing: dbPing, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for all three registration endpoints.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest is the JSON request body for refresh-token and validate-token.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ForgotPasswordRequest is the JSON request body for forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the JSON request body for reset-password.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ConfirmEmailRequest is the JSON request body for confirm-email.
type ConfirmEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// --- Response types ---

// statusResponse is the {status, message} body used by the registration flow.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageResponse is a bare {message} body.
type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	UserData   userData  `json:"userData"`
}

type userData struct {
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type introspectResponse struct {
	Status   string   `json:"status"`
	UserName string   `json:"userName"`
	Roles    []string `json:"roles"`
}

// --- Handlers ---

// TestConnect handles GET /api/authentication/testconnect. It probes store
// connectivity so deployments can be smoke-tested.
func (h *AuthHandler) TestConnect(w http.ResponseWriter, r *http.Request) {
	if err := h.dbPing(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Not Connected"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Connected"})
}

// RegisterUser handles POST /api/authentication/register-user.
func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleUser)
}

// RegisterManager handles POST /api/authentication/register-manager.
func (h *AuthHandler) RegisterManager(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleManager)
}

// RegisterAdmin handles POST /api/authentication/register-admin.
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleAdmin)
}

// register is the single flow behind all three registration endpoints,
// parameterized only by the granted role.
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, role string) {
	req, ok := decode[RegisterRequest](w, r)
	if !ok {
		return
	}

	input := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}

	if err := h.service.Register(r.Context(), input, role); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, statusResponse{Status: "Error", Message: conflictMessage(err)})
		case errors.Is(err, apperrors.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, statusResponse{Status: "Error", Message: err.Error()})
		default:
			h.logger.ErrorContext(r.Context(), "registration failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, statusResponse{
				Status:  "Error",
				Message: "User creation failed! Please check details and try again.",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "Success", Message: "User registered successfully"})
}

// Login handles POST /api/authentication/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[LoginRequest](w, r)
	if !ok {
		return
	}

	out, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Uniform body: no signal distinguishes unknown user from bad password.
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid login attempt"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:      out.Token.Token,
		Expiration: out.Token.ExpiresAt,
		UserData: userData{
			UserName: out.Username,
			Email:    out.Email,
			Roles:    out.Roles,
		},
	})
}

// Logout handles POST /api/authentication/logout. An anonymous call is an
// idempotent success; an authenticated call whose account is gone is 404.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	username := middleware.UsernameFromContext(r.Context())
	if username == "" {
		writeJSON(w, http.StatusOK, messageResponse{Message: "User not logged in"})
		return
	}

	if err := h.service.Logout(r.Context(), username); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "User not found"})
			return
		}
		h.logger.ErrorContext(r.Context(), "logout failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Logout failed"})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User logged out!"})
}

// RefreshToken handles POST /api/authentication/refresh-token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[TokenRequest](w, r)
	if !ok {
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid refresh token"})
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken.Token,
		RefreshToken: pair.RefreshToken,
	})
}

// ValidateToken handles POST /api/authentication/validate-token.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[TokenRequest](w, r)
	if !ok {
		return
	}

	username, roles, err := h.service.Introspect(req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, statusResponse{Status: "Error", Message: "Token is not valid"})
		return
	}

	writeJSON(w, http.StatusOK, introspectResponse{
		Status:   "Success",
		UserName: username,
		Roles:    roles,
	})
}

// ForgotPassword handles POST /api/authentication/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ForgotPasswordRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "User with this email does not exist."})
			return
		}
		h.logger.ErrorContext(r.Context(), "forgot password failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Could not process the request."})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset link has been sent to your email."})
}

// ResetPassword handles POST /api/authentication/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ResetPasswordRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, messageResponse{
				Message: "Error resetting password. Please ensure the reset token is valid.",
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "reset password failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Could not reset the password."})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully."})
}

// ConfirmEmail handles POST /api/authentication/confirm-email.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ConfirmEmailRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.ConfirmEmail(r.Context(), req.Email, req.Token); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, messageResponse{
				Message: "Error confirming email. Please ensure the confirmation token is valid.",
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "confirm email failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Could not confirm the email."})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Email has been confirmed successfully."})
}

// --- Helpers ---

// decode reads, parses, and validates a JSON request body. On failure it has
// already written the error response.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "Error",
			Message: "invalid request body: " + err.Error(),
		})
		return req, false
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return req, false
	}

	return req, true
}

// conflictMessage keeps the exact duplicate messages existing clients match on.
func conflictMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if strings.Contains(appErr.Message, "email") {
			return "Email already exists!"
		}
		return "Username already exists!"
	}
	return "Username already exists!"
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"
	"github.com/markbates/goth/gothic"

	"github.com/assinadoc/assinadoc-api/internal/api"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
	validate    *validator.Validate
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		validate:    validator.New(),
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates a new account and starts the 7-day trial provisioning.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload body types.RegisterRequest true "Registration payload"
// @Success      201 {object} types.Response "Account created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      409 {object} types.Response "Email or username taken"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Validation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	userID, err := h.authService.Register(ctx, req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		l.ErrorContext(ctx, "Failed to register user", slog.Any("error", err))
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email or username already in use")
			return
		}
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create account")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user_id": userID,
	})
}

// Login godoc
// @Summary      Login
// @Description  Authenticates with email and password, returns access and refresh tokens.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload body types.LoginRequest true "Login payload"
// @Success      200 {object} types.LoginResponse "Tokens"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid login payload")
		return
	}

	accessToken, refreshToken, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.Any("error", err))
		// Never leak whether the email exists.
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	})
}

// RefreshSession godoc
// @Summary      Refresh tokens
// @Description  Exchanges a valid refresh token for a new token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload body types.RefreshTokenRequest true "Refresh payload"
// @Success      200 {object} types.TokenResponse "New tokens"
// @Failure      401 {object} types.Response "Invalid refresh token"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RefreshSession"))

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		l.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented refresh token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload body types.LogoutRequest true "Logout payload"
// @Success      200 {object} types.Response "Logged out"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.LogoutRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Logged out"})
}

// withProvider copies the chi URL param into the context key gothic reads
// the provider name from.
func withProvider(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, chi.URLParam(r, "provider")))
}

// BeginProviderAuth starts the OAuth flow for the provider in the URL
// (e.g. /auth/google). gothic handles the redirect and session state.
func (h *AuthHandler) BeginProviderAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

// ProviderCallback completes the OAuth flow and issues local tokens.
func (h *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	r = withProvider(r)
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ProviderCallback"))

	providerUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "OAuth callback failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Provider authentication failed")
		return
	}

	accessToken, refreshToken, err := h.authService.GetOrCreateUserFromProvider(ctx, providerUser.Provider, providerUser)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve provider user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to complete sign-in")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	})
}

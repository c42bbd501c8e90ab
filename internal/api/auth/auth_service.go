package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"

	"github.com/assinadoc/assinadoc-api/config"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// Provisioner runs the best-effort post-signup sequence (signup date stamp,
// role record, trial plan). It never reports failure to the caller; every
// step logs its own outcome.
type Provisioner interface {
	ProvisionNewUser(ctx context.Context, userID uuid.UUID, email, fullName string)
}

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	Register(ctx context.Context, username, email, password, fullName string) (string, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (string, string, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger      *slog.Logger
	repo        AuthRepo
	provisioner Provisioner
	cfg         *config.Config
}

// NewAuthService creates a new auth service instance.
func NewAuthService(repo AuthRepo, provisioner Provisioner, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:      logger,
		repo:        repo,
		provisioner: provisioner,
		cfg:         cfg,
	}
}

// Register creates a user account and kicks off signup provisioning.
// Provisioning failures never surface here: the account insert is the unit
// of success, the trial setup is best-effort.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password, fullName string) (string, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.Register(ctx, username, email, string(hashedPassword))
	if err != nil {
		l.ErrorContext(ctx, "Failed to register user", slog.Any("error", err))
		return "", fmt.Errorf("error registering user: %w", err)
	}
	l.InfoContext(ctx, "User registered", slog.String("userID", userID))

	if uid, parseErr := uuid.Parse(userID); parseErr == nil {
		s.provisioner.ProvisionNewUser(ctx, uid, email, fullName)
	} else {
		l.ErrorContext(ctx, "Generated user ID is not a UUID, skipping provisioning", slog.Any("error", parseErr))
	}

	return userID, nil
}

// Login authenticates a user and returns an access and a refresh token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.WarnContext(ctx, "Login failed: user lookup", slog.Any("error", err))
		return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Login failed: password mismatch")
		return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	return s.issueTokens(ctx, user)
}

// RefreshSession rotates the refresh token and issues a new access token.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	l := s.logger.With(slog.String("method", "RefreshSession"))

	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, refreshToken)
	if err != nil {
		l.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		return "", "", err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("error fetching user for refresh: %w", err)
	}

	accessToken, newRefreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return "", "", err
	}

	// Rotation: revoke the old token after the new one is stored.
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.WarnContext(ctx, "Failed to invalidate old refresh token", slog.Any("error", err))
	}

	return accessToken, newRefreshToken, nil
}

// Logout revokes the presented refresh token.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.InvalidateRefreshToken(ctx, refreshToken)
}

// GetOrCreateUserFromProvider completes an OAuth sign-in: the provider user is
// mapped onto a local account (created and provisioned on first sign-in) and
// tokens are issued.
func (s *AuthServiceImpl) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (string, string, error) {
	l := s.logger.With(slog.String("method", "GetOrCreateUserFromProvider"), slog.String("provider", provider))

	user, created, err := s.repo.GetOrCreateUserFromProvider(ctx, provider, providerUser)
	if err != nil {
		l.ErrorContext(ctx, "Provider sign-in failed", slog.Any("error", err))
		return "", "", fmt.Errorf("error resolving provider user: %w", err)
	}

	if created {
		if uid, parseErr := uuid.Parse(user.ID); parseErr == nil {
			s.provisioner.ProvisionNewUser(ctx, uid, user.Email, providerUser.Name)
		}
	}

	return s.issueTokens(ctx, user)
}

// UpdatePassword verifies the old password and stores a new hash, revoking all
// outstanding refresh tokens.
func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	l := s.logger.With(slog.String("method", "UpdatePassword"), slog.String("userID", userID))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("invalid old password: %w", types.ErrUnauthenticated)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(newHash)); err != nil {
		return err
	}

	if err := s.repo.InvalidateAllUserRefreshTokens(ctx, userID); err != nil {
		l.WarnContext(ctx, "Failed to invalidate refresh tokens after password change", slog.Any("error", err))
	}
	return nil
}

func (s *AuthServiceImpl) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *types.UserAuth) (string, string, error) {
	accessToken, err := generateAccessToken(user, s.cfg.JWT)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// generateAccessToken signs a JWT carrying the custom claims used by the
// Authenticate middleware.
func generateAccessToken(user *types.UserAuth, jwtCfg config.JWTConfig) (string, error) {
	if jwtCfg.SecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}

	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.SecretKey))
}

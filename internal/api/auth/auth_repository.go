package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/markbates/goth"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the persistence contract for authentication.
type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
	Register(ctx context.Context, username, email, hashedPassword string) (string, error)
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, bool, error)
	UpdatePassword(ctx context.Context, userID, newHashedPassword string) error
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error)
	InvalidateRefreshToken(ctx context.Context, refreshToken string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
}

// PostgresAuthRepo implements AuthRepo against the users and refresh_tokens tables.
type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// GetUserByEmail fetches an active user by email for credential checks.
func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, COALESCE(display_name, ''), role, signup_date, is_active, created_at, updated_at
         FROM users WHERE email = $1 AND is_active = TRUE`,
		email).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.DisplayName,
		&user.Role, &user.SignupDate, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, COALESCE(display_name, ''), role, signup_date, is_active, created_at, updated_at
         FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.DisplayName,
		&user.Role, &user.SignupDate, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}
	return &user, nil
}

// Register inserts a new user row and returns its generated ID.
func (r *PostgresAuthRepo) Register(ctx context.Context, username, email, hashedPassword string) (string, error) {
	userID := uuid.NewString()
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $5)`,
		userID, username, email, hashedPassword, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return userID, nil
}

// GetOrCreateUserFromProvider resolves an OAuth login to a local user,
// creating the user on first sign-in. The second return value reports
// whether a new user row was created.
func (r *PostgresAuthRepo) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, bool, error) {
	existing, err := r.GetUserByEmail(ctx, providerUser.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, false, err
	}

	userID := uuid.NewString()
	username := providerUser.NickName
	if username == "" {
		username = providerUser.Email
	}
	_, err = r.pgpool.Exec(ctx,
		`INSERT INTO users (id, username, email, display_name, auth_provider, created_at, updated_at)
         VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $6)`,
		userID, username, providerUser.Email, providerUser.Name, provider, time.Now())
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert provider user: %w", err)
	}

	created, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		newHashedPassword, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update password: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found for password update: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

// ValidateRefreshTokenAndGetUserID returns the owning user ID when the token
// exists, is unexpired and has not been revoked.
func (r *PostgresAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	var userID string
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at
         FROM refresh_tokens
         WHERE token = $1`, refreshToken).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("invalid refresh token: %w", types.ErrUnauthenticated)
		}
		return "", fmt.Errorf("validate refresh token: query failed: %w", err)
	}

	if time.Now().After(expiresAt) || revokedAt != nil {
		return "", fmt.Errorf("refresh token expired or revoked: %w", types.ErrUnauthenticated)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
         WHERE token = $2 AND revoked_at IS NULL`,
		time.Now(), refreshToken)
	if err != nil {
		return fmt.Errorf("invalidate refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already revoked or unknown token. Not an error for logout.
		r.logger.Debug("no refresh token found or already revoked")
	}
	return nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
         WHERE user_id = $2 AND revoked_at IS NULL`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("invalidate all tokens: db update failed: %w", err)
	}
	return nil
}

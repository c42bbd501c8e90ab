package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo exposes profile reads and writes.
type UserRepo interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error)
}

// PostgresUserRepo implements UserRepo.
type PostgresUserRepo struct {
	pgpool *pgxpool.Pool
}

func NewPostgresUserRepo(pgpool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pgpool: pgpool}
}

const profileColumns = `id, username, email, display_name, role, signup_date, created_at`

func scanProfile(row pgx.Row) (*types.UserProfile, error) {
	var p types.UserProfile
	var displayName *string
	err := row.Scan(&p.ID, &p.Username, &p.Email, &displayName, &p.Role, &p.SignupDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	return &p, nil
}

func (r *PostgresUserRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetProfile")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	row := r.pgpool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1 AND is_active = TRUE`, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "user not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}
	return profile, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	var setClauses []string
	var args []interface{}
	argID := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if params.Username != nil {
		addClause("username", *params.Username)
	}
	if params.DisplayName != nil {
		addClause("display_name", *params.DisplayName)
	}

	if len(setClauses) == 0 {
		return r.GetProfile(ctx, userID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d AND is_active = TRUE RETURNING `+profileColumns,
		strings.Join(setClauses, ", "), argID)

	profile, err := scanProfile(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "user not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "username taken")
			return nil, fmt.Errorf("username already in use: %w", types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating profile: %w", err)
	}
	return profile, nil
}

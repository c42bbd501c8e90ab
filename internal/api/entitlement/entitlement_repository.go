package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ EntitlementRepo = (*PostgresEntitlementRepo)(nil)

// PGXPool is the slice of pgxpool.Pool the repository needs. pgxmock
// satisfies it too.
type PGXPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntitlementRepo defines the two remote lookups the engine needs.
type EntitlementRepo interface {
	// GetSignupDate returns the user's signup timestamp, nil when the user
	// exists but provisioning never stamped one.
	GetSignupDate(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	// HasActiveUserPlan reports whether at least one user_plans row with
	// status='active' exists for the user, regardless of is_trial or end_date.
	HasActiveUserPlan(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PostgresEntitlementRepo implements EntitlementRepo against the users and
// user_plans tables.
type PostgresEntitlementRepo struct {
	pgpool PGXPool
}

func NewPostgresEntitlementRepo(pgpool PGXPool) *PostgresEntitlementRepo {
	return &PostgresEntitlementRepo{pgpool: pgpool}
}

func (r *PostgresEntitlementRepo) GetSignupDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	ctx, span := otel.Tracer("EntitlementRepo").Start(ctx, "GetSignupDate")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	var signupDate *time.Time
	err := r.pgpool.QueryRow(ctx,
		`SELECT signup_date FROM users WHERE id = $1`, userID).Scan(&signupDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "user not found")
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching signup date: %w", err)
	}
	return signupDate, nil
}

func (r *PostgresEntitlementRepo) HasActiveUserPlan(ctx context.Context, userID uuid.UUID) (bool, error) {
	ctx, span := otel.Tracer("EntitlementRepo").Start(ctx, "HasActiveUserPlan")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_plans"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_plans WHERE user_id = $1 AND status = $2)`,
		userID, types.UserPlanStatusActive).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return false, fmt.Errorf("database error checking active user plan: %w", err)
	}
	return exists, nil
}

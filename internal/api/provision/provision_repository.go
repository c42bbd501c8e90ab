package provision

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ ProvisionRepo = (*PostgresProvisionRepo)(nil)

// ProvisionRepo holds the writes performed while setting up a fresh account.
type ProvisionRepo interface {
	// StampSignupDate sets users.signup_date exactly once; a user whose
	// signup date is already set is left untouched.
	StampSignupDate(ctx context.Context, userID uuid.UUID) error
	// CreateRoleRecord inserts the user_roles row.
	CreateRoleRecord(ctx context.Context, userID uuid.UUID, role string) error
	// CreateTrialPlan inserts the initial user_plans row.
	CreateTrialPlan(ctx context.Context, params types.CreateUserPlanParams) error
}

// PostgresProvisionRepo implements ProvisionRepo.
type PostgresProvisionRepo struct {
	pgpool *pgxpool.Pool
}

func NewPostgresProvisionRepo(pgpool *pgxpool.Pool) *PostgresProvisionRepo {
	return &PostgresProvisionRepo{pgpool: pgpool}
}

func (r *PostgresProvisionRepo) StampSignupDate(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("ProvisionRepo").Start(ctx, "StampSignupDate")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	// WHERE signup_date IS NULL keeps the stamp idempotent across retries
	// and provider sign-ins for an already provisioned user.
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET signup_date = NOW(), updated_at = NOW()
         WHERE id = $1 AND signup_date IS NULL`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("database error stamping signup date: %w", err)
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	return nil
}

func (r *PostgresProvisionRepo) CreateRoleRecord(ctx context.Context, userID uuid.UUID, role string) error {
	ctx, span := otel.Tracer("ProvisionRepo").Start(ctx, "CreateRoleRecord")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_roles"),
		attribute.String("db.user.id", userID.String()),
	)
	defer span.End()

	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
         ON CONFLICT (user_id, role) DO NOTHING`, userID, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("database error creating role record: %w", err)
	}
	return nil
}

func (r *PostgresProvisionRepo) CreateTrialPlan(ctx context.Context, params types.CreateUserPlanParams) error {
	ctx, span := otel.Tracer("ProvisionRepo").Start(ctx, "CreateTrialPlan")
	span.SetAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_plans"),
		attribute.String("db.user.id", params.UserID.String()),
	)
	defer span.End()

	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO user_plans (user_id, plan_id, start_date, end_date, status, auto_renew, is_trial)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		params.UserID, params.PlanID, params.StartDate, params.EndDate,
		params.Status, params.AutoRenew, params.IsTrial)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return fmt.Errorf("database error creating trial plan: %w", err)
	}
	return nil
}

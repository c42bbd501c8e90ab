package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ PlanRepo = (*PostgresPlanRepo)(nil)

// PlanRepo defines the persistence contract for the plan catalog.
type PlanRepo interface {
	// ListActive returns active plans ordered by ascending monthly price.
	ListActive(ctx context.Context) ([]*types.Plan, error)
	// ListAll returns every plan, active or not, for the admin catalog.
	ListAll(ctx context.Context) ([]*types.Plan, error)
	Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	Create(ctx context.Context, params types.CreatePlanParams) (*types.Plan, error)
	Update(ctx context.Context, planID uuid.UUID, params types.UpdatePlanParams) error
	Delete(ctx context.Context, planID uuid.UUID) error
}

// PostgresPlanRepo implements PlanRepo against the plans table.
type PostgresPlanRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresPlanRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresPlanRepo {
	return &PostgresPlanRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const planColumns = `id, name, price_monthly, price_semiannual, price_annual, features, COALESCE(color, ''), COALESCE(icon, ''), active, popular, created_at, updated_at`

func scanPlan(row pgx.Row) (*types.Plan, error) {
	var p types.Plan
	err := row.Scan(&p.ID, &p.Name, &p.PriceMonthly, &p.PriceSemiannual, &p.PriceAnnual,
		&p.Features, &p.Color, &p.Icon, &p.Active, &p.Popular, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPlanRepo) ListActive(ctx context.Context) ([]*types.Plan, error) {
	ctx, span := otel.Tracer("PlanRepo").Start(ctx, "ListActive")
	span.SetAttributes(semconv.DBSystemPostgreSQL, attribute.String("db.sql.table", "plans"))
	defer span.End()

	rows, err := r.pgpool.Query(ctx,
		`SELECT `+planColumns+` FROM plans WHERE active = TRUE ORDER BY price_monthly ASC`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing active plans: %w", err)
	}
	defer rows.Close()

	return collectPlans(rows)
}

func (r *PostgresPlanRepo) ListAll(ctx context.Context) ([]*types.Plan, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+planColumns+` FROM plans ORDER BY price_monthly ASC`)
	if err != nil {
		return nil, fmt.Errorf("database error listing plans: %w", err)
	}
	defer rows.Close()

	return collectPlans(rows)
}

func collectPlans(rows pgx.Rows) ([]*types.Plan, error) {
	var plans []*types.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning plan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan rows: %w", err)
	}
	return plans, nil
}

func (r *PostgresPlanRepo) Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	p, err := scanPlan(r.pgpool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1`, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching plan: %w", err)
	}
	return p, nil
}

func (r *PostgresPlanRepo) Create(ctx context.Context, params types.CreatePlanParams) (*types.Plan, error) {
	features := params.Features
	if features == nil {
		features = []string{}
	}
	p, err := scanPlan(r.pgpool.QueryRow(ctx,
		`INSERT INTO plans (name, price_monthly, price_semiannual, price_annual, features, color, icon, active, popular)
         VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
         RETURNING `+planColumns,
		params.Name, params.PriceMonthly, params.PriceSemiannual, params.PriceAnnual,
		features, params.Color, params.Icon, params.Active, params.Popular))
	if err != nil {
		return nil, fmt.Errorf("database error creating plan: %w", err)
	}
	return p, nil
}

// Update builds a dynamic SET clause from the non-nil params.
func (r *PostgresPlanRepo) Update(ctx context.Context, planID uuid.UUID, params types.UpdatePlanParams) error {
	l := r.logger.With(slog.String("method", "Update"), slog.String("planID", planID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *params.Name)
		argID++
	}
	if params.PriceMonthly != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_monthly = $%d", argID))
		args = append(args, *params.PriceMonthly)
		argID++
	}
	if params.PriceSemiannual != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_semiannual = $%d", argID))
		args = append(args, *params.PriceSemiannual)
		argID++
	}
	if params.PriceAnnual != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_annual = $%d", argID))
		args = append(args, *params.PriceAnnual)
		argID++
	}
	if params.Features != nil {
		setClauses = append(setClauses, fmt.Sprintf("features = $%d", argID))
		args = append(args, *params.Features)
		argID++
	}
	if params.Color != nil {
		setClauses = append(setClauses, fmt.Sprintf("color = $%d", argID))
		args = append(args, *params.Color)
		argID++
	}
	if params.Icon != nil {
		setClauses = append(setClauses, fmt.Sprintf("icon = $%d", argID))
		args = append(args, *params.Icon)
		argID++
	}
	if params.Active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", argID))
		args = append(args, *params.Active)
		argID++
	}
	if params.Popular != nil {
		setClauses = append(setClauses, fmt.Sprintf("popular = $%d", argID))
		args = append(args, *params.Popular)
		argID++
	}

	if len(setClauses) == 0 {
		l.WarnContext(ctx, "Update called with no fields to update")
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, planID)
	query := fmt.Sprintf("UPDATE plans SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to execute plan update", slog.Any("error", err))
		return fmt.Errorf("database error updating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan not found for update: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresPlanRepo) Delete(ctx context.Context, planID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		// user_plans holds an ON DELETE RESTRICT reference; the DB refuses
		// deletion of a plan that is still subscribed to.
		return fmt.Errorf("database error deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan not found for delete: %w", types.ErrNotFound)
	}
	return nil
}

package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ PlanService = (*PlanServiceImpl)(nil)

const activePlansCacheKey = "plans:active"

// PlanService defines the business logic contract for the plan catalog.
type PlanService interface {
	// ListActive returns the public pricing catalog, cheapest first.
	ListActive(ctx context.Context) ([]*types.Plan, error)
	ListAll(ctx context.Context) ([]*types.Plan, error)
	Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	// GetDefaultPlan returns the cheapest active plan, or nil when no active
	// plan exists or the lookup fails. Callers must treat nil as "no plan to
	// provision" and skip trial creation rather than fail signup.
	GetDefaultPlan(ctx context.Context) *types.Plan
	Create(ctx context.Context, params types.CreatePlanParams) (*types.Plan, error)
	Update(ctx context.Context, planID uuid.UUID, params types.UpdatePlanParams) error
	Delete(ctx context.Context, planID uuid.UUID) error
}

// PlanServiceImpl provides the implementation for PlanService, caching the
// active catalog between writes.
type PlanServiceImpl struct {
	logger *slog.Logger
	repo   PlanRepo
	cache  *cache.Cache
}

// NewPlanService creates a new plan service instance.
func NewPlanService(repo PlanRepo, logger *slog.Logger) *PlanServiceImpl {
	return &PlanServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *PlanServiceImpl) ListActive(ctx context.Context) ([]*types.Plan, error) {
	if cached, found := s.cache.Get(activePlansCacheKey); found {
		return cached.([]*types.Plan), nil
	}

	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list active plans", slog.Any("error", err))
		return nil, fmt.Errorf("error listing active plans: %w", err)
	}

	s.cache.Set(activePlansCacheKey, plans, cache.DefaultExpiration)
	return plans, nil
}

func (s *PlanServiceImpl) ListAll(ctx context.Context) ([]*types.Plan, error) {
	plans, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}
	return plans, nil
}

func (s *PlanServiceImpl) Get(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	p, err := s.repo.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("error fetching plan: %w", err)
	}
	return p, nil
}

// GetDefaultPlan resolves the trial plan for new signups: the active plan with
// the lowest monthly price. Lookup failure and an empty catalog both resolve
// to nil, never an error.
func (s *PlanServiceImpl) GetDefaultPlan(ctx context.Context) *types.Plan {
	plans, err := s.ListActive(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Default plan lookup failed, no plan to provision", slog.Any("error", err))
		return nil
	}
	if len(plans) == 0 {
		s.logger.WarnContext(ctx, "No active plans, no plan to provision")
		return nil
	}
	// ListActive orders by ascending monthly price.
	return plans[0]
}

func (s *PlanServiceImpl) Create(ctx context.Context, params types.CreatePlanParams) (*types.Plan, error) {
	l := s.logger.With(slog.String("method", "Create"))

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create plan", slog.Any("error", err))
		return nil, fmt.Errorf("error creating plan: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	l.InfoContext(ctx, "Plan created", slog.String("planID", p.ID.String()))
	return p, nil
}

func (s *PlanServiceImpl) Update(ctx context.Context, planID uuid.UUID, params types.UpdatePlanParams) error {
	l := s.logger.With(slog.String("method", "Update"), slog.String("planID", planID.String()))

	if err := s.repo.Update(ctx, planID, params); err != nil {
		l.ErrorContext(ctx, "Failed to update plan", slog.Any("error", err))
		return fmt.Errorf("error updating plan: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	l.InfoContext(ctx, "Plan updated")
	return nil
}

func (s *PlanServiceImpl) Delete(ctx context.Context, planID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "Delete"), slog.String("planID", planID.String()))

	if err := s.repo.Delete(ctx, planID); err != nil {
		l.ErrorContext(ctx, "Failed to delete plan", slog.Any("error", err))
		return fmt.Errorf("error deleting plan: %w", err)
	}

	s.cache.Delete(activePlansCacheKey)
	l.InfoContext(ctx, "Plan deleted")
	return nil
}

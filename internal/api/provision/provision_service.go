package provision

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/config"
	"github.com/assinadoc/assinadoc-api/internal/api/auth"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

const defaultRole = "user"

// DefaultPlanResolver yields the plan a fresh trial should be opened on.
// A nil result means there is no plan to provision.
type DefaultPlanResolver interface {
	GetDefaultPlan(ctx context.Context) *types.Plan
}

var _ auth.Provisioner = (*ServiceImpl)(nil)

// ServiceImpl sets up a newly registered account: signup date stamp, role
// record, and the initial trial subscription. Every step is best-effort. A
// half-provisioned user is recoverable later; a failed signup is not, so no
// step here may surface an error to the register flow.
type ServiceImpl struct {
	logger      *slog.Logger
	repo        ProvisionRepo
	plans       DefaultPlanResolver
	trialPeriod time.Duration
	now         func() time.Time
}

// NewService creates a new provisioning service instance.
func NewService(repo ProvisionRepo, plans DefaultPlanResolver, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	trialDays := cfg.Plan.TrialDays
	if trialDays <= 0 {
		trialDays = 7
	}
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		plans:       plans,
		trialPeriod: time.Duration(trialDays) * 24 * time.Hour,
		now:         time.Now,
	}
}

// ProvisionNewUser runs the post-signup setup sequence. Each step is logged
// and failures are swallowed; later steps still run after an earlier one
// fails. There is no rollback.
func (s *ServiceImpl) ProvisionNewUser(ctx context.Context, userID uuid.UUID, email, fullName string) {
	l := s.logger.With(
		slog.String("method", "ProvisionNewUser"),
		slog.String("userID", userID.String()),
		slog.String("email", email),
	)
	l.InfoContext(ctx, "Provisioning new user", slog.String("fullName", fullName))

	if err := s.repo.StampSignupDate(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Failed to stamp signup date", slog.Any("error", err))
	}

	if err := s.repo.CreateRoleRecord(ctx, userID, defaultRole); err != nil {
		l.ErrorContext(ctx, "Failed to create role record", slog.Any("error", err))
	}

	plan := s.plans.GetDefaultPlan(ctx)
	if plan == nil {
		// An empty catalog is not an error. The user simply starts
		// without a trial subscription row.
		l.WarnContext(ctx, "No default plan available, skipping trial subscription")
		return
	}

	start := s.now()
	end := start.Add(s.trialPeriod)
	err := s.repo.CreateTrialPlan(ctx, types.CreateUserPlanParams{
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   &end,
		Status:    types.UserPlanStatusActive,
		AutoRenew: true,
		IsTrial:   true,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to create trial subscription", slog.Any("error", err), slog.String("planID", plan.ID.String()))
		return
	}
	l.InfoContext(ctx, "Trial subscription created", slog.String("planID", plan.ID.String()), slog.Time("trialEnd", end))
}

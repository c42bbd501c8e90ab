package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/config"
)

// Decision is the tagged outcome of an entitlement evaluation. The two
// fail-closed booleans are folded into a single result so the trial-first
// short-circuit cannot be broken by callers composing them in the wrong order.
type Decision string

const (
	// DecisionTrialActive grants access because the trial window is open;
	// the subscription lookup is skipped entirely.
	DecisionTrialActive Decision = "trial_active"
	// DecisionGranted grants access via an active subscription row.
	DecisionGranted Decision = "granted"
	// DecisionSubscriptionRequired denies access: trial over, no active row.
	DecisionSubscriptionRequired Decision = "subscription_required"
	// DecisionUnknown denies access: the user could not be evaluated at all.
	DecisionUnknown Decision = "unknown"
)

// Allowed reports whether the decision grants dashboard access.
// Unknown is a denial: the gate never fails open.
func (d Decision) Allowed() bool {
	return d == DecisionTrialActive || d == DecisionGranted
}

var _ EntitlementService = (*EntitlementServiceImpl)(nil)

// EntitlementService decides trial and subscription status. All methods are
// total: lookup failures resolve to the fail-closed default, never an error.
type EntitlementService interface {
	// IsTrialPeriodOver reports whether the trial window has elapsed.
	// Missing signup date or a failed lookup count as over.
	IsTrialPeriodOver(ctx context.Context, userID uuid.UUID) bool
	// HasActiveSubscription reports whether any user_plans row with
	// status='active' exists. A failed lookup counts as no subscription.
	HasActiveSubscription(ctx context.Context, userID uuid.UUID) bool
	// Evaluate runs the trial check first and only consults the
	// subscription state once the trial is over.
	Evaluate(ctx context.Context, userID uuid.UUID) Decision
}

// EntitlementServiceImpl provides the implementation for EntitlementService.
type EntitlementServiceImpl struct {
	logger      *slog.Logger
	repo        EntitlementRepo
	trialPeriod time.Duration
	now         func() time.Time
}

// NewEntitlementService creates a new entitlement service instance.
func NewEntitlementService(repo EntitlementRepo, cfg *config.Config, logger *slog.Logger) *EntitlementServiceImpl {
	trialDays := cfg.Plan.TrialDays
	if trialDays <= 0 {
		trialDays = 7
	}
	return &EntitlementServiceImpl{
		logger:      logger,
		repo:        repo,
		trialPeriod: time.Duration(trialDays) * 24 * time.Hour,
		now:         time.Now,
	}
}

// trialOver resolves the trial question against the repository. The boundary
// is strict: at exactly the window the trial is still active. A negative
// elapsed time (clock skew, future signup date) also counts as active.
// A nil signup date is reported as over without an error.
func (s *EntitlementServiceImpl) trialOver(ctx context.Context, userID uuid.UUID) (bool, error) {
	signupDate, err := s.repo.GetSignupDate(ctx, userID)
	if err != nil {
		return true, err
	}
	if signupDate == nil {
		return true, nil
	}
	return s.now().Sub(*signupDate) > s.trialPeriod, nil
}

// IsTrialPeriodOver reports whether the trial window has elapsed. Both a
// missing signup date and a failed lookup fail closed to true: a data error
// must not grant free access.
func (s *EntitlementServiceImpl) IsTrialPeriodOver(ctx context.Context, userID uuid.UUID) bool {
	l := s.logger.With(slog.String("method", "IsTrialPeriodOver"), slog.String("userID", userID.String()))

	over, err := s.trialOver(ctx, userID)
	if err != nil {
		l.WarnContext(ctx, "Signup date lookup failed, treating trial as over", slog.Any("error", err))
	}
	return over
}

// HasActiveSubscription reports row existence only: it deliberately ignores
// the is_trial flag and does not compare end_date against now, so a stale
// row that was never cancelled still grants access.
func (s *EntitlementServiceImpl) HasActiveSubscription(ctx context.Context, userID uuid.UUID) bool {
	l := s.logger.With(slog.String("method", "HasActiveSubscription"), slog.String("userID", userID.String()))

	hasActive, err := s.repo.HasActiveUserPlan(ctx, userID)
	if err != nil {
		l.WarnContext(ctx, "Subscription lookup failed, treating as no subscription", slog.Any("error", err))
		return false
	}
	return hasActive
}

// Evaluate is the single entry point used by the access gate. The trial
// check is awaited to completion before the subscription check begins; an
// open trial skips the subscription lookup entirely. When every lookup
// errored the result is DecisionUnknown, which still denies.
func (s *EntitlementServiceImpl) Evaluate(ctx context.Context, userID uuid.UUID) Decision {
	l := s.logger.With(slog.String("method", "Evaluate"), slog.String("userID", userID.String()))
	start := s.now()

	var decision Decision
	over, trialErr := s.trialOver(ctx, userID)
	if trialErr != nil {
		l.WarnContext(ctx, "Signup date lookup failed, treating trial as over", slog.Any("error", trialErr))
	}
	if !over {
		decision = DecisionTrialActive
	} else {
		hasActive, subErr := s.repo.HasActiveUserPlan(ctx, userID)
		if subErr != nil {
			l.WarnContext(ctx, "Subscription lookup failed, treating as no subscription", slog.Any("error", subErr))
		}
		switch {
		case hasActive && subErr == nil:
			decision = DecisionGranted
		case trialErr != nil && subErr != nil:
			decision = DecisionUnknown
		default:
			decision = DecisionSubscriptionRequired
		}
	}

	recordDecision(ctx, decision, time.Since(start))
	return decision
}

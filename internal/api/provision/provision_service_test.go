package provision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/assinadoc/assinadoc-api/config"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

// MockProvisionRepo is a mock implementation of ProvisionRepo.
type MockProvisionRepo struct {
	mock.Mock
}

func (m *MockProvisionRepo) StampSignupDate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockProvisionRepo) CreateRoleRecord(ctx context.Context, userID uuid.UUID, role string) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockProvisionRepo) CreateTrialPlan(ctx context.Context, params types.CreateUserPlanParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

var _ ProvisionRepo = (*MockProvisionRepo)(nil)

// MockPlanResolver is a mock implementation of DefaultPlanResolver.
type MockPlanResolver struct {
	mock.Mock
}

func (m *MockPlanResolver) GetDefaultPlan(ctx context.Context) *types.Plan {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.Plan)
}

var _ DefaultPlanResolver = (*MockPlanResolver)(nil)

func newTestService(repo ProvisionRepo, plans DefaultPlanResolver, now time.Time) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Plan: config.PlanConfig{TrialDays: 7}}
	svc := NewService(repo, plans, cfg, logger)
	svc.now = func() time.Time { return now }
	return svc
}

func TestServiceImpl_ProvisionNewUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	trialEnd := now.Add(7 * 24 * time.Hour)
	basicPlan := &types.Plan{ID: uuid.New(), Name: "Básico", PriceMonthly: 29.90, Active: true}

	t.Run("happy path creates a seven day trial", func(t *testing.T) {
		mockRepo := new(MockProvisionRepo)
		mockPlans := new(MockPlanResolver)
		mockRepo.On("StampSignupDate", ctx, userID).Return(nil).Once()
		mockRepo.On("CreateRoleRecord", ctx, userID, "user").Return(nil).Once()
		mockPlans.On("GetDefaultPlan", ctx).Return(basicPlan).Once()
		mockRepo.On("CreateTrialPlan", ctx, types.CreateUserPlanParams{
			UserID:    userID,
			PlanID:    basicPlan.ID,
			StartDate: now,
			EndDate:   &trialEnd,
			Status:    types.UserPlanStatusActive,
			AutoRenew: true,
			IsTrial:   true,
		}).Return(nil).Once()

		svc := newTestService(mockRepo, mockPlans, now)
		svc.ProvisionNewUser(ctx, userID, "ana@example.com", "Ana Souza")

		mockRepo.AssertExpectations(t)
		mockPlans.AssertExpectations(t)
	})

	t.Run("no default plan skips trial creation without failing", func(t *testing.T) {
		mockRepo := new(MockProvisionRepo)
		mockPlans := new(MockPlanResolver)
		mockRepo.On("StampSignupDate", ctx, userID).Return(nil).Once()
		mockRepo.On("CreateRoleRecord", ctx, userID, "user").Return(nil).Once()
		mockPlans.On("GetDefaultPlan", ctx).Return(nil).Once()

		svc := newTestService(mockRepo, mockPlans, now)
		svc.ProvisionNewUser(ctx, userID, "ana@example.com", "Ana Souza")

		mockRepo.AssertNotCalled(t, "CreateTrialPlan", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
		mockPlans.AssertExpectations(t)
	})

	t.Run("stamp failure does not stop the remaining steps", func(t *testing.T) {
		mockRepo := new(MockProvisionRepo)
		mockPlans := new(MockPlanResolver)
		mockRepo.On("StampSignupDate", ctx, userID).Return(errors.New("db down")).Once()
		mockRepo.On("CreateRoleRecord", ctx, userID, "user").Return(nil).Once()
		mockPlans.On("GetDefaultPlan", ctx).Return(basicPlan).Once()
		mockRepo.On("CreateTrialPlan", ctx, mock.AnythingOfType("types.CreateUserPlanParams")).Return(nil).Once()

		svc := newTestService(mockRepo, mockPlans, now)
		svc.ProvisionNewUser(ctx, userID, "ana@example.com", "Ana Souza")

		mockRepo.AssertExpectations(t)
	})

	t.Run("every step failing still returns normally", func(t *testing.T) {
		mockRepo := new(MockProvisionRepo)
		mockPlans := new(MockPlanResolver)
		mockRepo.On("StampSignupDate", ctx, userID).Return(errors.New("db down")).Once()
		mockRepo.On("CreateRoleRecord", ctx, userID, "user").Return(errors.New("db down")).Once()
		mockPlans.On("GetDefaultPlan", ctx).Return(basicPlan).Once()
		mockRepo.On("CreateTrialPlan", ctx, mock.AnythingOfType("types.CreateUserPlanParams")).Return(errors.New("db down")).Once()

		svc := newTestService(mockRepo, mockPlans, now)
		assert.NotPanics(t, func() {
			svc.ProvisionNewUser(ctx, userID, "ana@example.com", "Ana Souza")
		})

		mockRepo.AssertExpectations(t)
	})
}

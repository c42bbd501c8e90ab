package entitlement

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

// MockEntitlementRepo is a mock implementation of EntitlementRepo.
type MockEntitlementRepo struct {
	mock.Mock
}

func (m *MockEntitlementRepo) GetSignupDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, userID)
	var date *time.Time
	if args.Get(0) != nil {
		date = args.Get(0).(*time.Time)
	}
	return date, args.Error(1)
}

func (m *MockEntitlementRepo) HasActiveUserPlan(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var _ EntitlementRepo = (*MockEntitlementRepo)(nil)

func newTestService(repo EntitlementRepo, now time.Time) *EntitlementServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Plan: config.PlanConfig{TrialDays: 7}}
	svc := NewEntitlementService(repo, cfg, logger)
	svc.now = func() time.Time { return now }
	return svc
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEntitlementServiceImpl_IsTrialPeriodOver(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		signupDate *time.Time
		repoErr    error
		want       bool
	}{
		{
			name:       "signup one day ago is within trial",
			signupDate: timePtr(now.Add(-24 * time.Hour)),
			want:       false,
		},
		{
			name:       "signup exactly seven days ago is still within trial",
			signupDate: timePtr(now.Add(-7 * 24 * time.Hour)),
			want:       false,
		},
		{
			name:       "signup just past seven days is over",
			signupDate: timePtr(now.Add(-7*24*time.Hour - time.Second)),
			want:       true,
		},
		{
			name:       "signup date in the future counts as within trial",
			signupDate: timePtr(now.Add(48 * time.Hour)),
			want:       false,
		},
		{
			name:       "missing signup date fails closed",
			signupDate: nil,
			want:       true,
		},
		{
			name:    "user not found fails closed",
			repoErr: types.ErrNotFound,
			want:    true,
		},
		{
			name:    "database error fails closed",
			repoErr: errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockEntitlementRepo)
			mockRepo.On("GetSignupDate", ctx, userID).Return(tc.signupDate, tc.repoErr).Once()

			svc := newTestService(mockRepo, now)
			got := svc.IsTrialPeriodOver(ctx, userID)

			assert.Equal(t, tc.want, got)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEntitlementServiceImpl_HasActiveSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active row exists", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(true, nil).Once()

		svc := newTestService(mockRepo, now)
		assert.True(t, svc.HasActiveSubscription(ctx, userID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("no active row", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(false, nil).Once()

		svc := newTestService(mockRepo, now)
		assert.False(t, svc.HasActiveSubscription(ctx, userID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("lookup error fails closed to no subscription", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(false, errors.New("timeout")).Once()

		svc := newTestService(mockRepo, now)
		assert.False(t, svc.HasActiveSubscription(ctx, userID))
		mockRepo.AssertExpectations(t)
	})
}

func TestEntitlementServiceImpl_Evaluate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active trial grants without consulting subscriptions", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("GetSignupDate", ctx, userID).Return(timePtr(now.Add(-2*24*time.Hour)), nil).Once()

		svc := newTestService(mockRepo, now)
		decision := svc.Evaluate(ctx, userID)

		assert.Equal(t, DecisionTrialActive, decision)
		assert.True(t, decision.Allowed())
		mockRepo.AssertNotCalled(t, "HasActiveUserPlan", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("expired trial with active subscription grants", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("GetSignupDate", ctx, userID).Return(timePtr(now.Add(-30*24*time.Hour)), nil).Once()
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(true, nil).Once()

		svc := newTestService(mockRepo, now)
		decision := svc.Evaluate(ctx, userID)

		assert.Equal(t, DecisionGranted, decision)
		assert.True(t, decision.Allowed())
		mockRepo.AssertExpectations(t)
	})

	t.Run("expired trial without subscription denies", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("GetSignupDate", ctx, userID).Return(timePtr(now.Add(-30*24*time.Hour)), nil).Once()
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(false, nil).Once()

		svc := newTestService(mockRepo, now)
		decision := svc.Evaluate(ctx, userID)

		assert.Equal(t, DecisionSubscriptionRequired, decision)
		assert.False(t, decision.Allowed())
		mockRepo.AssertExpectations(t)
	})

	t.Run("both lookups failing yields unknown and denies", func(t *testing.T) {
		mockRepo := new(MockEntitlementRepo)
		mockRepo.On("GetSignupDate", ctx, userID).Return(nil, errors.New("down")).Once()
		mockRepo.On("HasActiveUserPlan", ctx, userID).Return(false, errors.New("down")).Once()

		svc := newTestService(mockRepo, now)
		decision := svc.Evaluate(ctx, userID)

		assert.Equal(t, DecisionUnknown, decision)
		assert.False(t, decision.Allowed())
		mockRepo.AssertExpectations(t)
	})
}

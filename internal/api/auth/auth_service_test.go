package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/assinadoc/assinadoc-api/config"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

// MockAuthRepo is a mock implementation of AuthRepo.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	var u *types.UserAuth
	if args.Get(0) != nil {
		u = args.Get(0).(*types.UserAuth)
	}
	return u, args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	var u *types.UserAuth
	if args.Get(0) != nil {
		u = args.Get(0).(*types.UserAuth)
	}
	return u, args.Error(1)
}

func (m *MockAuthRepo) Register(ctx context.Context, username, email, hashedPassword string) (string, error) {
	args := m.Called(ctx, username, email, hashedPassword)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, bool, error) {
	args := m.Called(ctx, provider, providerUser)
	var u *types.UserAuth
	if args.Get(0) != nil {
		u = args.Get(0).(*types.UserAuth)
	}
	return u, args.Bool(1), args.Error(2)
}

func (m *MockAuthRepo) UpdatePassword(ctx context.Context, userID, hashedPassword string) error {
	args := m.Called(ctx, userID, hashedPassword)
	return args.Error(0)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) InvalidateRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ AuthRepo = (*MockAuthRepo)(nil)

// MockProvisioner is a mock implementation of Provisioner.
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) ProvisionNewUser(ctx context.Context, userID uuid.UUID, email, fullName string) {
	m.Called(ctx, userID, email, fullName)
}

var _ Provisioner = (*MockProvisioner)(nil)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "assinadoc-api",
		Audience:        "assinadoc-dashboard",
	}
	return cfg
}

func newTestAuthService(repo AuthRepo, provisioner Provisioner) *AuthServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, provisioner, testConfig(), logger)
}

func TestAuthServiceImpl_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and provisions", func(t *testing.T) {
		userID := uuid.New()
		mockRepo := new(MockAuthRepo)
		mockProv := new(MockProvisioner)
		mockRepo.On("Register", ctx, "ana", "ana@example.com", mock.AnythingOfType("string")).
			Return(userID.String(), nil).Once()
		mockProv.On("ProvisionNewUser", ctx, userID, "ana@example.com", "Ana Souza").Once()

		svc := newTestAuthService(mockRepo, mockProv)
		got, err := svc.Register(ctx, "ana", "ana@example.com", "s3nh4-forte", "Ana Souza")

		require.NoError(t, err)
		assert.Equal(t, userID.String(), got)
		mockRepo.AssertExpectations(t)
		mockProv.AssertExpectations(t)
	})

	t.Run("stores a bcrypt hash, not the password", func(t *testing.T) {
		userID := uuid.NewString()
		mockRepo := new(MockAuthRepo)
		mockProv := new(MockProvisioner)
		mockRepo.On("Register", ctx, "ana", "ana@example.com", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3nh4-forte")) == nil
		})).Return(userID, nil).Once()
		mockProv.On("ProvisionNewUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

		svc := newTestAuthService(mockRepo, mockProv)
		_, err := svc.Register(ctx, "ana", "ana@example.com", "s3nh4-forte", "Ana Souza")

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository failure aborts before provisioning", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockProv := new(MockProvisioner)
		mockRepo.On("Register", ctx, "ana", "ana@example.com", mock.AnythingOfType("string")).
			Return("", types.ErrConflict).Once()

		svc := newTestAuthService(mockRepo, mockProv)
		_, err := svc.Register(ctx, "ana", "ana@example.com", "s3nh4-forte", "Ana Souza")

		require.Error(t, err)
		mockProv.AssertNotCalled(t, "ProvisionNewUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthServiceImpl_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nh4-forte"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &types.UserAuth{
		ID:       uuid.NewString(),
		Username: "ana",
		Email:    "ana@example.com",
		Password: string(hash),
		Role:     "user",
	}

	t.Run("valid credentials yield signed tokens", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := newTestAuthService(mockRepo, new(MockProvisioner))
		accessToken, refreshToken, err := svc.Login(ctx, user.Email, "s3nh4-forte")

		require.NoError(t, err)
		assert.NotEmpty(t, refreshToken)

		claims := &types.Claims{}
		parsed, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "user", claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong password is unauthenticated", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

		svc := newTestAuthService(mockRepo, new(MockProvisioner))
		_, _, err := svc.Login(ctx, user.Email, "errada")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email is unauthenticated", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockRepo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, types.ErrNotFound).Once()

		svc := newTestAuthService(mockRepo, new(MockProvisioner))
		_, _, err := svc.Login(ctx, "ghost@example.com", "s3nh4-forte")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})
}

func TestAuthServiceImpl_RefreshSession(t *testing.T) {
	ctx := context.Background()
	user := &types.UserAuth{ID: uuid.NewString(), Username: "ana", Email: "ana@example.com", Role: "user"}

	t.Run("rotates the refresh token", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockRepo.On("ValidateRefreshTokenAndGetUserID", ctx, "old-token").Return(user.ID, nil).Once()
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		mockRepo.On("InvalidateRefreshToken", ctx, "old-token").Return(nil).Once()

		svc := newTestAuthService(mockRepo, new(MockProvisioner))
		accessToken, newRefreshToken, err := svc.RefreshSession(ctx, "old-token")

		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEqual(t, "old-token", newRefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		mockRepo.On("ValidateRefreshTokenAndGetUserID", ctx, "bogus").Return("", types.ErrUnauthenticated).Once()

		svc := newTestAuthService(mockRepo, new(MockProvisioner))
		_, _, err := svc.RefreshSession(ctx, "bogus")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestAuthServiceImpl_GetOrCreateUserFromProvider(t *testing.T) {
	ctx := context.Background()
	providerUser := goth.User{Provider: "google", Email: "ana@example.com", Name: "Ana Souza"}

	t.Run("first provider sign-in provisions the account", func(t *testing.T) {
		userID := uuid.New()
		user := &types.UserAuth{ID: userID.String(), Email: providerUser.Email, Role: "user"}
		mockRepo := new(MockAuthRepo)
		mockProv := new(MockProvisioner)
		mockRepo.On("GetOrCreateUserFromProvider", ctx, "google", providerUser).Return(user, true, nil).Once()
		mockProv.On("ProvisionNewUser", ctx, userID, user.Email, providerUser.Name).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := newTestAuthService(mockRepo, mockProv)
		_, _, err := svc.GetOrCreateUserFromProvider(ctx, "google", providerUser)

		require.NoError(t, err)
		mockProv.AssertExpectations(t)
	})

	t.Run("returning user is not re-provisioned", func(t *testing.T) {
		user := &types.UserAuth{ID: uuid.NewString(), Email: providerUser.Email, Role: "user"}
		mockRepo := new(MockAuthRepo)
		mockProv := new(MockProvisioner)
		mockRepo.On("GetOrCreateUserFromProvider", ctx, "google", providerUser).Return(user, false, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		svc := newTestAuthService(mockRepo, mockProv)
		_, _, err := svc.GetOrCreateUserFromProvider(ctx, "google", providerUser)

		require.NoError(t, err)
		mockProv.AssertNotCalled(t, "ProvisionNewUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

package contract

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

// MockContractRepo is a mock implementation of ContractRepo.
type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, ownerID uuid.UUID, fileName string) (*types.Contract, error) {
	args := m.Called(ctx, ownerID, fileName)
	var c *types.Contract
	if args.Get(0) != nil {
		c = args.Get(0).(*types.Contract)
	}
	return c, args.Error(1)
}

func (m *MockContractRepo) Get(ctx context.Context, contractID uuid.UUID) (*types.Contract, error) {
	args := m.Called(ctx, contractID)
	var c *types.Contract
	if args.Get(0) != nil {
		c = args.Get(0).(*types.Contract)
	}
	return c, args.Error(1)
}

func (m *MockContractRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Contract, error) {
	args := m.Called(ctx, ownerID)
	var cs []*types.Contract
	if args.Get(0) != nil {
		cs = args.Get(0).([]*types.Contract)
	}
	return cs, args.Error(1)
}

func (m *MockContractRepo) UpdateStatus(ctx context.Context, contractID uuid.UUID, status string) error {
	args := m.Called(ctx, contractID, status)
	return args.Error(0)
}

var _ ContractRepo = (*MockContractRepo)(nil)

func newTestService(repo ContractRepo) *ContractServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewContractService(repo, logger)
}

func TestContractServiceImpl_StageSet(t *testing.T) {
	svc := newTestService(new(MockContractRepo))

	t.Run("no contract unlocks only upload", func(t *testing.T) {
		state := svc.StageSet(nil, types.StageUpload)

		assert.Nil(t, state.ContractID)
		assert.Equal(t, types.StageUpload, state.ActiveStage)
		assert.True(t, state.Unlocked[types.StageUpload])
		for _, stage := range []types.WorkflowStage{types.StageEdit, types.StageForm, types.StageLink, types.StageSign} {
			assert.False(t, state.Unlocked[stage], "stage %s should be locked", stage)
		}
	})

	t.Run("contract id unlocks every stage", func(t *testing.T) {
		id := uuid.New()
		state := svc.StageSet(&id, types.StageForm)

		require.NotNil(t, state.ContractID)
		assert.Equal(t, id, *state.ContractID)
		assert.Equal(t, types.StageForm, state.ActiveStage)
		for _, stage := range types.WorkflowStages {
			assert.True(t, state.Unlocked[stage], "stage %s should be unlocked", stage)
		}
	})

	t.Run("unlocked stages allow revisiting earlier ones", func(t *testing.T) {
		id := uuid.New()
		// Jumping back from sign to edit is permitted.
		state := svc.StageSet(&id, types.StageEdit)

		assert.Equal(t, types.StageEdit, state.ActiveStage)
		assert.True(t, state.Unlocked[types.StageSign])
	})

	t.Run("locked active stage falls back to upload", func(t *testing.T) {
		state := svc.StageSet(nil, types.StageSign)

		assert.Equal(t, types.StageUpload, state.ActiveStage)
	})
}

func TestContractServiceImpl_CompleteUpload(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("records contract and activates edit stage", func(t *testing.T) {
		created := &types.Contract{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			FileName:  "contrato.pdf",
			Status:    types.ContractStatusUploaded,
			CreatedAt: time.Now(),
		}
		mockRepo := new(MockContractRepo)
		mockRepo.On("Create", ctx, ownerID, "contrato.pdf").Return(created, nil).Once()

		svc := newTestService(mockRepo)
		contract, state, err := svc.CompleteUpload(ctx, ownerID, "contrato.pdf")

		require.NoError(t, err)
		assert.Equal(t, created, contract)
		require.NotNil(t, state.ContractID)
		assert.Equal(t, created.ID, *state.ContractID)
		assert.Equal(t, types.StageEdit, state.ActiveStage)
		for _, stage := range types.WorkflowStages {
			assert.True(t, state.Unlocked[stage])
		}
		mockRepo.AssertExpectations(t)
	})

	t.Run("repository failure surfaces an error", func(t *testing.T) {
		mockRepo := new(MockContractRepo)
		mockRepo.On("Create", ctx, ownerID, "contrato.pdf").Return(nil, assert.AnError).Once()

		svc := newTestService(mockRepo)
		contract, state, err := svc.CompleteUpload(ctx, ownerID, "contrato.pdf")

		require.Error(t, err)
		assert.Nil(t, contract)
		assert.Nil(t, state)
		mockRepo.AssertExpectations(t)
	})
}

func TestContractServiceImpl_AdvanceStatus(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	contractID := uuid.New()
	existing := &types.Contract{ID: contractID, OwnerID: ownerID, FileName: "contrato.pdf", Status: types.ContractStatusUploaded}

	t.Run("valid status for own contract", func(t *testing.T) {
		mockRepo := new(MockContractRepo)
		mockRepo.On("Get", ctx, contractID).Return(existing, nil).Once()
		mockRepo.On("UpdateStatus", ctx, contractID, types.ContractStatusFieldsEdited).Return(nil).Once()

		svc := newTestService(mockRepo)
		err := svc.AdvanceStatus(ctx, contractID, ownerID, types.ContractStatusFieldsEdited)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		mockRepo := new(MockContractRepo)

		svc := newTestService(mockRepo)
		err := svc.AdvanceStatus(ctx, contractID, ownerID, "signed_in_blood")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other user's contract is forbidden", func(t *testing.T) {
		mockRepo := new(MockContractRepo)
		mockRepo.On("Get", ctx, contractID).Return(existing, nil).Once()

		svc := newTestService(mockRepo)
		err := svc.AdvanceStatus(ctx, contractID, uuid.New(), types.ContractStatusFormBuilt)

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrForbidden)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

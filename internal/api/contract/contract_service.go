package contract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ ContractService = (*ContractServiceImpl)(nil)

// ContractService drives the signature preparation wizard.
type ContractService interface {
	// CompleteUpload records the uploaded document and returns the workflow
	// state positioned on the edit stage.
	CompleteUpload(ctx context.Context, ownerID uuid.UUID, fileName string) (*types.Contract, *types.WorkflowState, error)
	// StageSet computes which wizard stages are unlocked for the given
	// contract id. A nil id means nothing has been uploaded yet.
	StageSet(contractID *uuid.UUID, activeStage types.WorkflowStage) *types.WorkflowState
	GetContract(ctx context.Context, contractID, ownerID uuid.UUID) (*types.Contract, error)
	ListContracts(ctx context.Context, ownerID uuid.UUID) ([]*types.Contract, error)
	// AdvanceStatus records a workflow milestone on the contract. The status
	// is an audit trail only and never restricts which stage can be opened.
	AdvanceStatus(ctx context.Context, contractID, ownerID uuid.UUID, status string) error
}

// ContractServiceImpl provides the implementation for ContractService.
type ContractServiceImpl struct {
	logger *slog.Logger
	repo   ContractRepo
}

// NewContractService creates a new contract service instance.
func NewContractService(repo ContractRepo, logger *slog.Logger) *ContractServiceImpl {
	return &ContractServiceImpl{logger: logger, repo: repo}
}

var validStatuses = map[string]struct{}{
	types.ContractStatusUploaded:        {},
	types.ContractStatusFieldsEdited:    {},
	types.ContractStatusFormBuilt:       {},
	types.ContractStatusLinkGenerated:   {},
	types.ContractStatusSentToSignature: {},
}

// StageSet unlocks the upload stage unconditionally and everything else only
// once a contract exists. There is no forward-only progression: any unlocked
// stage may be revisited.
func (s *ContractServiceImpl) StageSet(contractID *uuid.UUID, activeStage types.WorkflowStage) *types.WorkflowState {
	hasContract := contractID != nil
	unlocked := make(map[types.WorkflowStage]bool, len(types.WorkflowStages))
	for _, stage := range types.WorkflowStages {
		unlocked[stage] = stage == types.StageUpload || hasContract
	}
	if !unlocked[activeStage] {
		activeStage = types.StageUpload
	}
	return &types.WorkflowState{
		ContractID:  contractID,
		ActiveStage: activeStage,
		Unlocked:    unlocked,
	}
}

func (s *ContractServiceImpl) CompleteUpload(ctx context.Context, ownerID uuid.UUID, fileName string) (*types.Contract, *types.WorkflowState, error) {
	l := s.logger.With(slog.String("method", "CompleteUpload"), slog.String("ownerID", ownerID.String()))

	contract, err := s.repo.Create(ctx, ownerID, fileName)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create contract record", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to record uploaded contract: %w", err)
	}
	l.InfoContext(ctx, "Contract uploaded", slog.String("contractID", contract.ID.String()), slog.String("fileName", fileName))

	state := s.StageSet(&contract.ID, types.StageEdit)
	return contract, state, nil
}

func (s *ContractServiceImpl) GetContract(ctx context.Context, contractID, ownerID uuid.UUID) (*types.Contract, error) {
	l := s.logger.With(slog.String("method", "GetContract"), slog.String("contractID", contractID.String()))

	contract, err := s.repo.Get(ctx, contractID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch contract", slog.Any("error", err))
		return nil, err
	}
	if contract.OwnerID != ownerID {
		l.WarnContext(ctx, "Contract access denied", slog.String("ownerID", ownerID.String()))
		return nil, fmt.Errorf("contract belongs to another user: %w", types.ErrForbidden)
	}
	return contract, nil
}

func (s *ContractServiceImpl) ListContracts(ctx context.Context, ownerID uuid.UUID) ([]*types.Contract, error) {
	l := s.logger.With(slog.String("method", "ListContracts"), slog.String("ownerID", ownerID.String()))

	contracts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list contracts", slog.Any("error", err))
		return nil, err
	}
	return contracts, nil
}

func (s *ContractServiceImpl) AdvanceStatus(ctx context.Context, contractID, ownerID uuid.UUID, status string) error {
	l := s.logger.With(slog.String("method", "AdvanceStatus"), slog.String("contractID", contractID.String()), slog.String("status", status))

	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("unknown contract status %q: %w", status, types.ErrConflict)
	}
	if _, err := s.GetContract(ctx, contractID, ownerID); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, contractID, status); err != nil {
		l.ErrorContext(ctx, "Failed to update contract status", slog.Any("error", err))
		return err
	}
	l.InfoContext(ctx, "Contract status updated")
	return nil
}

package contract

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/internal/api"
	"github.com/assinadoc/assinadoc-api/internal/api/auth"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CompleteUpload(w http.ResponseWriter, r *http.Request)
	GetWorkflowState(w http.ResponseWriter, r *http.Request)
	GetContract(w http.ResponseWriter, r *http.Request)
	ListContracts(w http.ResponseWriter, r *http.Request)
	AdvanceStatus(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	contractService ContractService
	logger          *slog.Logger
	validate        *validator.Validate
}

// NewHandlerImpl creates a new contract HandlerImpl instance.
func NewHandlerImpl(contractService ContractService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		contractService: contractService,
		logger:          logger,
		validate:        validator.New(),
	}
}

type completeUploadRequest struct {
	FileName string `json:"file_name" validate:"required"`
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type uploadResponse struct {
	Contract *types.Contract      `json:"contract"`
	Workflow *types.WorkflowState `json:"workflow"`
}

func (h *HandlerImpl) ownerFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	ownerID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Malformed user ID in context", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return ownerID, true
}

// CompleteUpload godoc
// @Summary      Register an uploaded contract
// @Description  Records the uploaded document and unlocks the remaining wizard stages.
// @Tags         Contracts
// @Accept       json
// @Produce      json
// @Param        request body completeUploadRequest true "Uploaded file details"
// @Success      201 {object} uploadResponse "Contract and workflow state"
// @Failure      400 {object} types.Response "Bad Request"
// @Failure      402 {object} types.Response "Payment Required"
// @Security     BearerAuth
// @Router       /contracts/upload [post]
func (h *HandlerImpl) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	var req completeUploadRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "file_name is required")
		return
	}

	contract, state, err := h.contractService.CompleteUpload(ctx, ownerID, req.FileName)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to complete upload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to record upload")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, uploadResponse{Contract: contract, Workflow: state})
}

// GetWorkflowState godoc
// @Summary      Workflow state
// @Description  Returns the wizard stage set. Without a contract_id query parameter only the upload stage is unlocked.
// @Tags         Contracts
// @Produce      json
// @Param        contract_id query string false "Contract ID"
// @Param        stage query string false "Requested active stage"
// @Success      200 {object} types.WorkflowState "Workflow state"
// @Security     BearerAuth
// @Router       /contracts/workflow [get]
func (h *HandlerImpl) GetWorkflowState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	var contractID *uuid.UUID
	if raw := r.URL.Query().Get("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid contract_id")
			return
		}
		// Ownership is verified before the id unlocks anything.
		if _, err := h.contractService.GetContract(ctx, id, ownerID); err != nil {
			h.handleContractError(w, r, err)
			return
		}
		contractID = &id
	}

	activeStage := types.WorkflowStage(r.URL.Query().Get("stage"))
	if activeStage == "" {
		activeStage = types.StageUpload
	}

	state := h.contractService.StageSet(contractID, activeStage)
	api.WriteJSONResponse(w, r, http.StatusOK, state)
}

// GetContract godoc
// @Summary      Get contract
// @Tags         Contracts
// @Produce      json
// @Param        contractID path string true "Contract ID"
// @Success      200 {object} types.Contract "Contract"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /contracts/{contractID} [get]
func (h *HandlerImpl) GetContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.GetContract(ctx, contractID, ownerID)
	if err != nil {
		h.handleContractError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, contract)
}

// ListContracts godoc
// @Summary      List contracts
// @Description  Returns the caller's contracts, newest first.
// @Tags         Contracts
// @Produce      json
// @Success      200 {array} types.Contract "Contracts"
// @Security     BearerAuth
// @Router       /contracts [get]
func (h *HandlerImpl) ListContracts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	contracts, err := h.contractService.ListContracts(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list contracts", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load contracts")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, contracts)
}

// AdvanceStatus godoc
// @Summary      Update contract status
// @Description  Records a workflow milestone (fields_edited, form_built, link_generated, sent_to_signature).
// @Tags         Contracts
// @Accept       json
// @Produce      json
// @Param        contractID path string true "Contract ID"
// @Param        request body advanceStatusRequest true "New status"
// @Success      200 {object} types.Response "Status updated"
// @Failure      400 {object} types.Response "Bad Request"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /contracts/{contractID}/status [put]
func (h *HandlerImpl) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := h.ownerFromContext(w, r)
	if !ok {
		return
	}

	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	var req advanceStatusRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.contractService.AdvanceStatus(ctx, contractID, ownerID, req.Status); err != nil {
		h.handleContractError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Status updated"})
}

func (h *HandlerImpl) handleContractError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Contract not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "Contract belongs to another user")
	case errors.Is(err, types.ErrConflict):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid contract status")
	default:
		h.logger.ErrorContext(r.Context(), "Contract operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Contract operation failed")
	}
}

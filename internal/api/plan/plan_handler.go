package plan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/internal/api"
	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListActivePlans(w http.ResponseWriter, r *http.Request)
	ListAllPlans(w http.ResponseWriter, r *http.Request)
	GetPlan(w http.ResponseWriter, r *http.Request)
	CreatePlan(w http.ResponseWriter, r *http.Request)
	UpdatePlan(w http.ResponseWriter, r *http.Request)
	DeletePlan(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	planService PlanService
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewHandlerImpl creates a new plan HandlerImpl instance.
func NewHandlerImpl(planService PlanService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		planService: planService,
		logger:      logger,
		validate:    validator.New(),
	}
}

// ListActivePlans godoc
// @Summary      List active plans
// @Description  Returns the public pricing catalog, cheapest first.
// @Tags         Plans
// @Produce      json
// @Success      200 {array} types.Plan "Active plans"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /plans [get]
func (h *HandlerImpl) ListActivePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plans, err := h.planService.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list active plans", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load plans")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, plans)
}

// ListAllPlans godoc
// @Summary      List all plans
// @Description  Returns every plan including inactive ones. Admin only.
// @Tags         Plans
// @Produce      json
// @Success      200 {array} types.Plan "Plans"
// @Failure      403 {object} types.Response "Forbidden"
// @Security     BearerAuth
// @Router       /admin/plans [get]
func (h *HandlerImpl) ListAllPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plans, err := h.planService.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list plans", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load plans")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, plans)
}

// GetPlan godoc
// @Summary      Get plan
// @Tags         Plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      200 {object} types.Plan "Plan"
// @Failure      404 {object} types.Response "Not Found"
// @Router       /plans/{planID} [get]
func (h *HandlerImpl) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	p, err := h.planService.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to fetch plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreatePlan godoc
// @Summary      Create plan
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        payload body types.CreatePlanParams true "Plan payload"
// @Success      201 {object} types.Plan "Created plan"
// @Failure      400 {object} types.Response "Invalid Input"
// @Security     BearerAuth
// @Router       /admin/plans [post]
func (h *HandlerImpl) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreatePlan"))

	var params types.CreatePlanParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(params); err != nil {
		l.WarnContext(ctx, "Validation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan payload")
		return
	}

	p, err := h.planService.Create(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// UpdatePlan godoc
// @Summary      Update plan
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        payload body types.UpdatePlanParams true "Partial plan payload"
// @Success      200 {object} types.Response "Updated"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /admin/plans/{planID} [put]
func (h *HandlerImpl) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var params types.UpdatePlanParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan payload")
		return
	}

	if err := h.planService.Update(ctx, planID, params); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Plan updated"})
}

// DeletePlan godoc
// @Summary      Delete plan
// @Tags         Plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /admin/plans/{planID} [delete]
func (h *HandlerImpl) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	if err := h.planService.Delete(ctx, planID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

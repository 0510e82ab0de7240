package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EvaluationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type EvaluationHandlerImpl struct {
	evaluationService evaluation.Service
}

func NewEvaluationHandler(evaluationService evaluation.Service) EvaluationHandler {
	return &EvaluationHandlerImpl{evaluationService: evaluationService}
}

// Create implements EvaluationHandler.
func (h *EvaluationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req evaluation.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev, err := h.evaluationService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Evaluation created successfully", ev)
}

// Update implements EvaluationHandler.
func (h *EvaluationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req evaluation.UpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev, err := h.evaluationService.Update(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Evaluation updated successfully", ev)
}

// ChangeStatus implements EvaluationHandler.
func (h *EvaluationHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req evaluation.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev, err := h.evaluationService.ChangeStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Evaluation status updated successfully", ev)
}

// Get implements EvaluationHandler.
func (h *EvaluationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	ev, err := h.evaluationService.Get(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, ev)
}

// List implements EvaluationHandler.
func (h *EvaluationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := evaluation.ListFilter{
		EmployeeID: queryString(r, "employee_id"),
		Kind:       queryEnum[evaluation.Kind](r, "kind"),
		Status:     queryEnum[evaluation.Status](r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.evaluationService.List(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Evaluations, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

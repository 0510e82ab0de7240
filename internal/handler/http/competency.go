package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/competency"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CompetencyHandler interface {
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)

	AssignKPI(w http.ResponseWriter, r *http.Request)
	UnassignKPI(w http.ResponseWriter, r *http.Request)
	ListKPIs(w http.ResponseWriter, r *http.Request)
}

type CompetencyHandlerImpl struct {
	competencyService competency.Service
}

func NewCompetencyHandler(competencyService competency.Service) CompetencyHandler {
	return &CompetencyHandlerImpl{competencyService: competencyService}
}

// Assign implements CompetencyHandler.
func (h *CompetencyHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req competency.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.competencyService.Assign(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Competency assigned successfully", a)
}

// Unassign implements CompetencyHandler.
func (h *CompetencyHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	if err := h.competencyService.Unassign(r.Context(), tc, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Competency assignment removed", nil)
}

// ListByEmployee implements CompetencyHandler.
func (h *CompetencyHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	list, err := h.competencyService.ListByEmployee(r.Context(), tc, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// AssignKPI implements CompetencyHandler.
func (h *CompetencyHandlerImpl) AssignKPI(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req competency.AssignKPIRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.competencyService.AssignKPI(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "KPI assigned successfully", a)
}

// UnassignKPI implements CompetencyHandler.
func (h *CompetencyHandlerImpl) UnassignKPI(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	if err := h.competencyService.UnassignKPI(r.Context(), tc, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI assignment removed", nil)
}

// ListKPIs implements CompetencyHandler.
func (h *CompetencyHandlerImpl) ListKPIs(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	year, _ := queryInt(r, "year")

	list, err := h.competencyService.ListKPIs(r.Context(), tc, r.URL.Query().Get("participant_id"), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

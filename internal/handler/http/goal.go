package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/goal"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type GoalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
}

type GoalHandlerImpl struct {
	goalService goal.Service
}

func NewGoalHandler(goalService goal.Service) GoalHandler {
	return &GoalHandlerImpl{goalService: goalService}
}

// Create implements GoalHandler.
func (h *GoalHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req goal.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.goalService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Goal created successfully", g)
}

// Move implements GoalHandler.
func (h *GoalHandlerImpl) Move(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req goal.MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.goalService.Move(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Goal moved successfully", g)
}

// ChangeStatus implements GoalHandler.
func (h *GoalHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req goal.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.goalService.ChangeStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Goal status updated successfully", g)
}

// Get implements GoalHandler.
func (h *GoalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	g, err := h.goalService.Get(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, g)
}

// ListByEmployee implements GoalHandler.
func (h *GoalHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	goals, err := h.goalService.ListByEmployee(r.Context(), tc, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, goals)
}

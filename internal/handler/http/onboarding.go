package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/onboarding"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OnboardingHandler interface {
	CreateTask(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	ListTasks(w http.ResponseWriter, r *http.Request)
	Progress(w http.ResponseWriter, r *http.Request)
}

type OnboardingHandlerImpl struct {
	onboardingService onboarding.Service
}

func NewOnboardingHandler(onboardingService onboarding.Service) OnboardingHandler {
	return &OnboardingHandlerImpl{onboardingService: onboardingService}
}

// CreateTask implements OnboardingHandler.
func (h *OnboardingHandlerImpl) CreateTask(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req onboarding.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.onboardingService.CreateTask(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Onboarding task created successfully", task)
}

// ChangeStatus implements OnboardingHandler.
func (h *OnboardingHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req onboarding.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.onboardingService.ChangeStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Onboarding task updated successfully", task)
}

// ListTasks implements OnboardingHandler.
func (h *OnboardingHandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	phase := queryEnum[onboarding.Phase](r, "phase")
	if phase != nil && !phase.Valid() {
		badQuery(w, "phase", "phase must be preboarding or onboarding")
		return
	}

	tasks, err := h.onboardingService.ListTasks(r.Context(), tc, r.URL.Query().Get("employee_id"), phase)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tasks)
}

// Progress implements OnboardingHandler.
func (h *OnboardingHandlerImpl) Progress(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	progress, err := h.onboardingService.Progress(r.Context(), tc, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, progress)
}

package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateApplication(w http.ResponseWriter, r *http.Request)
	UpdateDraft(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	GetApplication(w http.ResponseWriter, r *http.Request)
	ListApplications(w http.ResponseWriter, r *http.Request)

	AdjustBalance(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.Service
}

func NewLeaveHandler(leaveService leave.Service) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// CreateApplication implements LeaveHandler.
func (h *LeaveHandlerImpl) CreateApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.CreateApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.leaveService.CreateApplication(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave application created successfully", app)
}

// UpdateDraft implements LeaveHandler.
func (h *LeaveHandlerImpl) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.UpdateApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.leaveService.UpdateDraft(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave application updated successfully", app)
}

// Submit implements LeaveHandler.
func (h *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	app, err := h.leaveService.Submit(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave application submitted successfully", app)
}

// Approve implements LeaveHandler.
func (h *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.leaveService.Approve(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave application approved successfully", app)
}

// Reject implements LeaveHandler.
func (h *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.leaveService.Reject(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave application rejected", app)
}

// Cancel implements LeaveHandler.
func (h *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.CancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.leaveService.Cancel(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave application cancelled", app)
}

// GetApplication implements LeaveHandler.
func (h *LeaveHandlerImpl) GetApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	app, err := h.leaveService.GetApplication(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, app)
}

// ListApplications implements LeaveHandler.
func (h *LeaveHandlerImpl) ListApplications(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := leave.ListApplicationsFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     queryEnum[leave.ApplicationStatus](r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.leaveService.ListApplications(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Applications, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

// AdjustBalance implements LeaveHandler.
func (h *LeaveHandlerImpl) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req leave.AdjustBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balance, err := h.leaveService.AdjustBalance(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave balance adjusted successfully", balance)
}

// GetBalances implements LeaveHandler. Without employee_id the caller's own balances are returned.
func (h *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	year, _ := queryInt(r, "year")

	balances, err := h.leaveService.GetBalances(r.Context(), tc, r.URL.Query().Get("employee_id"), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balances)
}

package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.Service
}

func NewOvertimeHandler(overtimeService overtime.Service) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

// Create implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req overtime.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.overtimeService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Overtime request created successfully", resp)
}

func (h *OvertimeHandlerImpl) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req overtime.DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decide, message := h.overtimeService.Reject, "Overtime request rejected"
	if approve {
		decide, message = h.overtimeService.Approve, "Overtime request approved successfully"
	}
	resp, err := decide(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, resp)
}

// Approve implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

// Cancel implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	resp, err := h.overtimeService.Cancel(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request cancelled", resp)
}

// Get implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	resp, err := h.overtimeService.Get(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// List implements OvertimeHandler.
func (h *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := overtime.ListFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     queryEnum[overtime.RequestStatus](r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.overtimeService.List(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Requests, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

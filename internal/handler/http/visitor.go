package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/visitor"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type VisitorHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type VisitorHandlerImpl struct {
	visitorService visitor.Service
}

func NewVisitorHandler(visitorService visitor.Service) VisitorHandler {
	return &VisitorHandlerImpl{visitorService: visitorService}
}

// Create implements VisitorHandler.
func (h *VisitorHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req visitor.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	visit, err := h.visitorService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Visit scheduled successfully", visit)
}

// ChangeStatus implements VisitorHandler.
func (h *VisitorHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req visitor.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	visit, err := h.visitorService.ChangeStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Visit status updated successfully", visit)
}

// Get implements VisitorHandler.
func (h *VisitorHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	visit, err := h.visitorService.Get(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, visit)
}

// List implements VisitorHandler.
func (h *VisitorHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	from, ok := queryTime(r, "from")
	if !ok {
		badQuery(w, "from", "from must be a date or RFC3339 time")
		return
	}
	to, ok := queryTime(r, "to")
	if !ok {
		badQuery(w, "to", "to must be a date or RFC3339 time")
		return
	}
	filter := visitor.ListFilter{
		HostEmployeeID: queryString(r, "host_employee_id"),
		Status:         queryEnum[visitor.Status](r, "status"),
		From:           from,
		To:             to,
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.visitorService.List(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Visits, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

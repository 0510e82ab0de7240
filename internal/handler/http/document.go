package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/document"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DocumentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type DocumentHandlerImpl struct {
	documentService document.Service
}

func NewDocumentHandler(documentService document.Service) DocumentHandler {
	return &DocumentHandlerImpl{documentService: documentService}
}

// Create implements DocumentHandler.
func (h *DocumentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req document.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Document request created successfully", doc)
}

// ChangeStatus implements DocumentHandler.
func (h *DocumentHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req document.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documentService.ChangeStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Document request status updated successfully", doc)
}

// Get implements DocumentHandler.
func (h *DocumentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	doc, err := h.documentService.Get(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, doc)
}

// List implements DocumentHandler.
func (h *DocumentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := document.ListFilter{
		EmployeeID: queryString(r, "employee_id"),
		Status:     queryEnum[document.Status](r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.documentService.List(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Requests, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

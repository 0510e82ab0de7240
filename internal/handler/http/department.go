package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/department"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DepartmentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Rename(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type DepartmentHandlerImpl struct {
	departmentService department.Service
}

func NewDepartmentHandler(departmentService department.Service) DepartmentHandler {
	return &DepartmentHandlerImpl{departmentService: departmentService}
}

// Create implements DepartmentHandler.
func (h *DepartmentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req department.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.departmentService.Create(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Department created successfully", d)
}

// Rename implements DepartmentHandler.
func (h *DepartmentHandlerImpl) Rename(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req department.RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.departmentService.Rename(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department renamed successfully", d)
}

// Move implements DepartmentHandler.
func (h *DepartmentHandlerImpl) Move(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req department.MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.departmentService.Move(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department moved successfully", d)
}

// List implements DepartmentHandler.
func (h *DepartmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	departments, err := h.departmentService.List(r.Context(), tc)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, departments)
}

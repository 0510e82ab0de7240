package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	GetEmployee(w http.ResponseWriter, r *http.Request)
	ChangeEmploymentStatus(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &EmployeeHandlerImpl{employeeService: employeeService}
}

// GetEmployee implements EmployeeHandler.
func (h *EmployeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	emp, err := h.employeeService.GetEmployee(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, emp)
}

// ChangeEmploymentStatus implements EmployeeHandler.
func (h *EmployeeHandlerImpl) ChangeEmploymentStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req employee.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	emp, err := h.employeeService.ChangeEmploymentStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employment status updated successfully", emp)
}

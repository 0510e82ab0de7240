package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	ChangePeriodStatus(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)

	// Entries
	CreateEntry(w http.ResponseWriter, r *http.Request)
	UpdateEntryAmounts(w http.ResponseWriter, r *http.Request)
	ChangeEntryStatus(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.Service
}

func NewPayrollHandler(payrollService payroll.Service) PayrollHandler {
	return &PayrollHandlerImpl{payrollService: payrollService}
}

// CreatePeriod implements PayrollHandler.
func (h *PayrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req payroll.CreatePeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	period, err := h.payrollService.CreatePeriod(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payroll period created successfully", period)
}

// ChangePeriodStatus implements PayrollHandler.
func (h *PayrollHandlerImpl) ChangePeriodStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req payroll.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	period, err := h.payrollService.ChangePeriodStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll period status updated successfully", period)
}

// GetPeriod implements PayrollHandler.
func (h *PayrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	period, err := h.payrollService.GetPeriod(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, period)
}

// ListPeriods implements PayrollHandler.
func (h *PayrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := payroll.PeriodFilter{Status: queryEnum[payroll.PeriodStatus](r, "status")}
	if year, ok := queryInt(r, "year"); ok {
		filter.Year = &year
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.payrollService.ListPeriods(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Periods, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

// CreateEntry implements PayrollHandler.
func (h *PayrollHandlerImpl) CreateEntry(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req payroll.EntryAmountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.payrollService.CreateEntry(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payroll entry created successfully", entry)
}

// UpdateEntryAmounts implements PayrollHandler.
func (h *PayrollHandlerImpl) UpdateEntryAmounts(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req payroll.EntryAmountsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.payrollService.UpdateEntryAmounts(r.Context(), tc, chi.URLParam(r, "entryID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll entry updated successfully", entry)
}

// ChangeEntryStatus implements PayrollHandler.
func (h *PayrollHandlerImpl) ChangeEntryStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req payroll.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.payrollService.ChangeEntryStatus(r.Context(), tc, chi.URLParam(r, "entryID"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll entry status updated successfully", entry)
}

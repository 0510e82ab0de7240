package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LoanHandler interface {
	SubmitApplication(w http.ResponseWriter, r *http.Request)
	ApproveApplication(w http.ResponseWriter, r *http.Request)
	RejectApplication(w http.ResponseWriter, r *http.Request)
	CancelApplication(w http.ResponseWriter, r *http.Request)
	GetApplication(w http.ResponseWriter, r *http.Request)

	RecordPayment(w http.ResponseWriter, r *http.Request)
	ChangeLoanStatus(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
}

type LoanHandlerImpl struct {
	loanService loan.Service
}

func NewLoanHandler(loanService loan.Service) LoanHandler {
	return &LoanHandlerImpl{loanService: loanService}
}

// SubmitApplication implements LoanHandler.
func (h *LoanHandlerImpl) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req loan.ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.loanService.SubmitApplication(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Loan application submitted successfully", app)
}

// ApproveApplication implements LoanHandler. The response is the disbursed loan.
func (h *LoanHandlerImpl) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req loan.ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.loanService.ApproveApplication(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Loan application approved successfully", l)
}

// RejectApplication implements LoanHandler.
func (h *LoanHandlerImpl) RejectApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req loan.RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.loanService.RejectApplication(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loan application rejected", app)
}

// CancelApplication implements LoanHandler.
func (h *LoanHandlerImpl) CancelApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	app, err := h.loanService.CancelApplication(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loan application cancelled", app)
}

// GetApplication implements LoanHandler.
func (h *LoanHandlerImpl) GetApplication(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	app, err := h.loanService.GetApplication(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, app)
}

// RecordPayment implements LoanHandler.
func (h *LoanHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req loan.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.loanService.RecordPayment(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loan payment recorded successfully", l)
}

// ChangeLoanStatus implements LoanHandler.
func (h *LoanHandlerImpl) ChangeLoanStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req loan.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.loanService.ChangeLoanStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loan status updated successfully", l)
}

// GetLoan implements LoanHandler.
func (h *LoanHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	l, err := h.loanService.GetLoan(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, l)
}

// ListLoans implements LoanHandler.
func (h *LoanHandlerImpl) ListLoans(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	filter := loan.ListFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     queryEnum[loan.LoanStatus](r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.loanService.ListLoans(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Loans, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

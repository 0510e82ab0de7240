package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PayDate   string `json:"pay_date"`

	start, end, pay time.Time
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
	}
	pay, okPay := validator.IsValidDate(r.PayDate)
	if !okPay {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if okStart && okPay && pay.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.start, r.end, r.pay = start, end, pay
	return nil
}

// Range and PayDay must only be called after Validate succeeded.
func (r *CreatePeriodRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.start, End: r.end}
}

func (r *CreatePeriodRequest) PayDay() time.Time {
	return r.pay
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (r *ChangeStatusRequest) Validate() error {
	if validator.IsEmpty(r.Status) {
		return validator.Fail("status", "is required")
	}
	return nil
}

type PeriodFilter struct {
	Status *PeriodStatus
	Year   *int
	Page   int
	Limit  int
}

func (f *PeriodFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type TotalsResponse struct {
	EntryCount      int             `json:"entry_count"`
	PaidCount       int             `json:"paid_count"`
	TotalBaseSalary decimal.Decimal `json:"total_base_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetSalary  decimal.Decimal `json:"total_net_salary"`
}

type PeriodResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	PayDate      string          `json:"pay_date"`
	Status       status.Option   `json:"status"`
	NextStatuses []status.Option `json:"next_statuses"`
	Entries      []EntryResponse `json:"entries,omitempty"`
	Totals       *TotalsResponse `json:"totals,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type ListPeriodsResponse struct {
	Periods    []PeriodResponse `json:"periods"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

func NewPeriodResponse(p PayrollPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:           p.ID,
		Name:         p.Name,
		StartDate:    p.StartDate.Format(validator.DateLayout),
		EndDate:      p.EndDate.Format(validator.DateLayout),
		PayDate:      p.PayDate.Format(validator.DateLayout),
		Status:       PeriodMachine.Option(p.Status),
		NextStatuses: PeriodMachine.NextOptions(p.Status),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
	if p.Entries != nil {
		resp.Entries = make([]EntryResponse, 0, len(p.Entries))
		for _, e := range p.Entries {
			resp.Entries = append(resp.Entries, NewEntryResponse(e))
		}
		t := Summarize(p.Entries)
		resp.Totals = &TotalsResponse{
			EntryCount:      t.EntryCount,
			PaidCount:       t.PaidCount,
			TotalBaseSalary: t.TotalBaseSalary,
			TotalAllowances: t.TotalAllowances,
			TotalDeductions: t.TotalDeductions,
			TotalNetSalary:  t.TotalNetSalary,
		}
	}
	return resp
}

// ========== ENTRY DTOs ==========

type EntryAmountsRequest struct {
	EmployeeID      string          `json:"employee_id,omitempty"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Notes           *string         `json:"notes,omitempty"`
}

// Validate checks the amounts. requireEmployee is set when creating an entry.
func (r *EntryAmountsRequest) Validate(requireEmployee bool) error {
	var errs validator.ValidationErrors

	if requireEmployee && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.TotalAllowances.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "total_allowances", Message: "must be non-negative"})
	}
	if r.TotalDeductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "total_deductions", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EntryResponse struct {
	ID              string          `json:"id"`
	PeriodID        string          `json:"period_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Notes           *string         `json:"notes,omitempty"`
	Status          status.Option   `json:"status"`
	NextStatuses    []status.Option `json:"next_statuses"`
	PaidAt          *string         `json:"paid_at,omitempty"`
}

func NewEntryResponse(e PayrollEntry) EntryResponse {
	resp := EntryResponse{
		ID:              e.ID,
		PeriodID:        e.PeriodID,
		EmployeeID:      e.EmployeeID,
		EmployeeName:    e.EmployeeName,
		BaseSalary:      e.BaseSalary,
		TotalAllowances: e.TotalAllowances,
		TotalDeductions: e.TotalDeductions,
		NetSalary:       e.NetSalary,
		Notes:           e.Notes,
		Status:          EntryMachine.Option(e.Status),
		NextStatuses:    EntryMachine.NextOptions(e.Status),
	}
	if e.PaidAt != nil {
		s := e.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateApplicationRequest struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason"`
	Submit      bool   `json:"submit"`
}

func (r *CreateApplicationRequest) Validate() error {
	var errs validator.ValidationErrors

	// Leave Type ID
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	errs = append(errs, validateDates(r.StartDate, r.EndDate)...)
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range must only be called after Validate succeeded.
func (r *CreateApplicationRequest) Range() validator.DateRange {
	return mustRange(r.StartDate, r.EndDate)
}

type UpdateApplicationRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason"`
}

func (r *UpdateApplicationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}
	errs = append(errs, validateDates(r.StartDate, r.EndDate)...)
	errs = append(errs, validateReason(r.Reason)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *UpdateApplicationRequest) Range() validator.DateRange {
	return mustRange(r.StartDate, r.EndDate)
}

type DecisionRequest = approval.DecisionRequest

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.Fail("reason", "reason is required")
	}
	return nil
}

type AdjustBalanceRequest struct {
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Days        decimal.Decimal `json:"days"`
	Reason      string          `json:"reason"`
}

func (r *AdjustBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "leave_type_id is required"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
	}
	if r.Days.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "days", Message: "days must not be zero"})
	}
	if !r.Days.Mod(decimal.NewFromFloat(0.5)).IsZero() {
		errs = append(errs, validator.ValidationError{Field: "days", Message: "days must be a multiple of 0.5"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListApplicationsFilter struct {
	EmployeeID string
	Status     *ApplicationStatus
	Page       int
	Limit      int
}

func (f *ListApplicationsFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ApplicationResponse struct {
	ID            string                   `json:"id"`
	EmployeeID    string                   `json:"employee_id"`
	EmployeeName  *string                  `json:"employee_name,omitempty"`
	LeaveTypeID   string                   `json:"leave_type_id"`
	LeaveTypeName *string                  `json:"leave_type_name,omitempty"`
	StartDate     string                   `json:"start_date"`
	EndDate       string                   `json:"end_date"`
	Days          decimal.Decimal          `json:"days"`
	Reason        string                   `json:"reason"`
	Status        status.Option            `json:"status"`
	NextStatuses  []status.Option          `json:"next_statuses"`
	Approvals     []approval.LevelResponse `json:"approvals"`
	SubmittedAt   *string                  `json:"submitted_at,omitempty"`
	CreatedAt     string                   `json:"created_at"`
}

type ListApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

type BalanceResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Granted     decimal.Decimal `json:"granted"`
	Used        decimal.Decimal `json:"used"`
	Pending     decimal.Decimal `json:"pending"`
	Available   decimal.Decimal `json:"available"`
}

func NewApplicationResponse(a LeaveApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  a.EmployeeName,
		LeaveTypeID:   a.LeaveTypeID,
		LeaveTypeName: a.LeaveTypeName,
		StartDate:     a.StartDate.Format(validator.DateLayout),
		EndDate:       a.EndDate.Format(validator.DateLayout),
		Days:          a.Days,
		Reason:        a.Reason,
		Status:        ApplicationMachine.Option(a.Status),
		NextStatuses:  ApplicationMachine.NextOptions(a.Status),
		Approvals:     approval.NewLevelResponses(a.Chain),
		SubmittedAt:   formatTime(a.SubmittedAt),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func NewBalanceResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:          b.ID,
		EmployeeID:  b.EmployeeID,
		LeaveTypeID: b.LeaveTypeID,
		Year:        b.Year,
		Granted:     b.Granted(),
		Used:        b.UsedQuota,
		Pending:     b.PendingQuota,
		Available:   b.Available(),
	}
}

func validateDates(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, okStart := validator.IsValidDate(start)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	endDate, okEnd := validator.IsValidDate(end)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd {
		if endDate.Before(startDate) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if startDate.Year() != endDate.Year() {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "leave cannot span two calendar years, submit one application per year",
			})
		}
	}
	return errs
}

func validateReason(reason string) validator.ValidationErrors {
	if validator.IsEmpty(reason) {
		return validator.Fail("reason", "reason is required")
	}
	if len(reason) > 1000 {
		return validator.Fail("reason", "reason must not exceed 1000 characters")
	}
	return nil
}

func mustRange(start, end string) validator.DateRange {
	s, _ := validator.IsValidDate(start)
	e, _ := validator.IsValidDate(end)
	return validator.DateRange{Start: s, End: e}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

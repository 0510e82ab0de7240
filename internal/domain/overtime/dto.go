package overtime

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	Reason     string `json:"reason"`

	startsAt, endsAt time.Time
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDateTime(r.StartsAt)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "starts_at", Message: "starts_at must be an RFC3339 timestamp"})
	}
	end, okEnd := validator.IsValidDateTime(r.EndsAt)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be an RFC3339 timestamp"})
	}
	if okStart && okEnd {
		switch d := end.Sub(start); {
		case d <= 0:
			errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be after starts_at"})
		case d > MaxDuration:
			errs = append(errs, validator.ValidationError{
				Field:   "ends_at",
				Message: fmt.Sprintf("overtime cannot exceed %d hours", int(MaxDuration.Hours())),
			})
		}
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.startsAt, r.endsAt = start, end
	return nil
}

// Range must only be called after Validate succeeded.
func (r *CreateRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.startsAt, End: r.endsAt}
}

type DecisionRequest = approval.DecisionRequest

type ListFilter struct {
	EmployeeID string
	Status     *RequestStatus
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type Response struct {
	ID           string                   `json:"id"`
	EmployeeID   string                   `json:"employee_id"`
	EmployeeName *string                  `json:"employee_name,omitempty"`
	StartsAt     string                   `json:"starts_at"`
	EndsAt       string                   `json:"ends_at"`
	Hours        decimal.Decimal          `json:"hours"`
	Reason       string                   `json:"reason"`
	Status       status.Option            `json:"status"`
	NextStatuses []status.Option          `json:"next_statuses"`
	Approvals    []approval.LevelResponse `json:"approvals"`
	CreatedAt    string                   `json:"created_at"`
}

type ListResponse struct {
	Requests   []Response `json:"requests"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

func NewResponse(r OvertimeRequest) Response {
	return Response{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		StartsAt:     r.StartsAt.Format(time.RFC3339),
		EndsAt:       r.EndsAt.Format(time.RFC3339),
		Hours:        r.Hours(),
		Reason:       r.Reason,
		Status:       RequestMachine.Option(r.Status),
		NextStatuses: RequestMachine.NextOptions(r.Status),
		Approvals:    approval.NewLevelResponses(r.Chain),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

package visitor

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateRequest struct {
	HostEmployeeID string  `json:"host_employee_id,omitempty"`
	VisitorName    string  `json:"visitor_name"`
	VisitorCompany *string `json:"visitor_company,omitempty"`
	Purpose        string  `json:"purpose"`
	ScheduledStart string  `json:"scheduled_start"`
	ScheduledEnd   string  `json:"scheduled_end"`

	start, end time.Time
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.HostEmployeeID != "" && !validator.IsValidUUID(r.HostEmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "host_employee_id", Message: "host_employee_id must be a valid UUID"})
	}
	if validator.IsEmpty(r.VisitorName) {
		errs = append(errs, validator.ValidationError{Field: "visitor_name", Message: "visitor_name is required"})
	}
	if validator.IsEmpty(r.Purpose) {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose is required"})
	}
	start, okStart := validator.IsValidDateTime(r.ScheduledStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "scheduled_start", Message: "scheduled_start must be an RFC3339 timestamp"})
	}
	end, okEnd := validator.IsValidDateTime(r.ScheduledEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "scheduled_end", Message: "scheduled_end must be an RFC3339 timestamp"})
	}
	if okStart && okEnd && !end.After(start) {
		errs = append(errs, validator.ValidationError{Field: "scheduled_end", Message: "scheduled_end must be after scheduled_start"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.start, r.end = start, end
	return nil
}

func (r *CreateRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.start, End: r.end}
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (r *ChangeStatusRequest) Validate() error {
	if validator.IsEmpty(r.Status) {
		return validator.Fail("status", "status is required")
	}
	return nil
}

type ListFilter struct {
	HostEmployeeID *string
	Status         *Status
	From           *time.Time
	To             *time.Time
	Page           int
	Limit          int
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
	ID             string          `json:"id"`
	HostEmployeeID string          `json:"host_employee_id"`
	HostName       *string         `json:"host_name,omitempty"`
	VisitorName    string          `json:"visitor_name"`
	VisitorCompany *string         `json:"visitor_company,omitempty"`
	Purpose        string          `json:"purpose"`
	ScheduledStart time.Time       `json:"scheduled_start"`
	ScheduledEnd   time.Time       `json:"scheduled_end"`
	Status         status.Option   `json:"status"`
	NextStatuses   []status.Option `json:"next_statuses"`
	CheckedInAt    *time.Time      `json:"checked_in_at,omitempty"`
	CheckedOutAt   *time.Time      `json:"checked_out_at,omitempty"`
}

type ListResponse struct {
	Visits     []Response `json:"visits"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

func NewResponse(v Visit) Response {
	return Response{
		ID:             v.ID,
		HostEmployeeID: v.HostEmployeeID,
		HostName:       v.HostName,
		VisitorName:    v.VisitorName,
		VisitorCompany: v.VisitorCompany,
		Purpose:        v.Purpose,
		ScheduledStart: v.ScheduledStart,
		ScheduledEnd:   v.ScheduledEnd,
		Status:         Machine.Option(v.Status),
		NextStatuses:   Machine.NextOptions(v.Status),
		CheckedInAt:    v.CheckedInAt,
		CheckedOutAt:   v.CheckedOutAt,
	}
}

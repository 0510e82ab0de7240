package document

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateRequest struct {
	EmployeeID   string `json:"employee_id,omitempty"`
	DocumentType string `json:"document_type"`
	Purpose      string `json:"purpose"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !Type(r.DocumentType).Valid() {
		errs = append(errs, validator.ValidationError{Field: "document_type", Message: "document_type is not supported"})
	}
	if validator.IsEmpty(r.Purpose) {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangeStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

func (r *ChangeStatusRequest) Validate() error {
	if validator.IsEmpty(r.Status) {
		return validator.Fail("status", "status is required")
	}
	if Status(r.Status) == StatusRejected && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		return validator.Fail("reason", "reason is required when rejecting")
	}
	return nil
}

type ListFilter struct {
	EmployeeID *string
	Status     *Status
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
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	DocumentType    Type            `json:"document_type"`
	Purpose         string          `json:"purpose"`
	Status          status.Option   `json:"status"`
	NextStatuses    []status.Option `json:"next_statuses"`
	HandledBy       *string         `json:"handled_by,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ReleasedAt      *time.Time      `json:"released_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ListResponse struct {
	Requests   []Response `json:"requests"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

func NewResponse(r Request) Response {
	return Response{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		DocumentType:    r.DocumentType,
		Purpose:         r.Purpose,
		Status:          Machine.Option(r.Status),
		NextStatuses:    Machine.NextOptions(r.Status),
		HandledBy:       r.HandledBy,
		RejectionReason: r.RejectionReason,
		ReleasedAt:      r.ReleasedAt,
		CreatedAt:       r.CreatedAt,
	}
}

package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type ChangeStatusRequest struct {
	Status        string `json:"status"`
	EffectiveDate string `json:"effective_date"`

	effective time.Time
}

func (r *ChangeStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status is required"})
	}
	d, ok := validator.IsValidDate(r.EffectiveDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_date", Message: "effective_date must be in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.effective = d
	return nil
}

// Effective must only be called after Validate succeeded.
func (r *ChangeStatusRequest) Effective() time.Time {
	return r.effective
}

type EmployeeResponse struct {
	ID               string          `json:"id"`
	EmployeeCode     string          `json:"employee_code"`
	FullName         string          `json:"full_name"`
	HireDate         string          `json:"hire_date"`
	ResignationDate  *string         `json:"resignation_date,omitempty"`
	EmploymentType   EmploymentType  `json:"employment_type"`
	EmploymentStatus status.Option   `json:"employment_status"`
	NextStatuses     []status.Option `json:"next_statuses"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID,
		EmployeeCode:     e.EmployeeCode,
		FullName:         e.FullName,
		HireDate:         e.HireDate.Format(validator.DateLayout),
		EmploymentType:   e.EmploymentType,
		EmploymentStatus: EmploymentMachine.Option(e.EmploymentStatus),
		NextStatuses:     EmploymentMachine.NextOptions(e.EmploymentStatus),
	}
	if e.ResignationDate != nil {
		s := e.ResignationDate.Format(validator.DateLayout)
		resp.ResignationDate = &s
	}
	return resp
}

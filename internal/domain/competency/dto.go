package competency

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type AssignRequest struct {
	EmployeeID   string `json:"employee_id"`
	CompetencyID string `json:"competency_id"`
	Level        int    `json:"level"`
}

func (r *AssignRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.CompetencyID) {
		errs = append(errs, validator.ValidationError{Field: "competency_id", Message: "competency_id must be a valid UUID"})
	}
	if r.Level < MinLevel || r.Level > MaxLevel {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: fmt.Sprintf("level must be between %d and %d", MinLevel, MaxLevel),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignKPIRequest struct {
	TemplateID    string `json:"template_id"`
	ParticipantID string `json:"participant_id"`
	PeriodYear    int    `json:"period_year"`
}

func (r *AssignKPIRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.TemplateID) {
		errs = append(errs, validator.ValidationError{Field: "template_id", Message: "template_id must be a valid UUID"})
	}
	if !validator.IsValidUUID(r.ParticipantID) {
		errs = append(errs, validator.ValidationError{Field: "participant_id", Message: "participant_id must be a valid UUID"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 9999 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "period_year must be a four digit year"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AssignmentResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	CompetencyID string    `json:"competency_id"`
	Level        int       `json:"level"`
	AssignedBy   string    `json:"assigned_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewAssignmentResponse(a Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		CompetencyID: a.CompetencyID,
		Level:        a.Level,
		AssignedBy:   a.AssignedBy,
		CreatedAt:    a.CreatedAt,
	}
}

type KPIAssignmentResponse struct {
	ID            string    `json:"id"`
	TemplateID    string    `json:"template_id"`
	ParticipantID string    `json:"participant_id"`
	PeriodYear    int       `json:"period_year"`
	AssignedBy    string    `json:"assigned_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewKPIAssignmentResponse(a KPIAssignment) KPIAssignmentResponse {
	return KPIAssignmentResponse{
		ID:            a.ID,
		TemplateID:    a.TemplateID,
		ParticipantID: a.ParticipantID,
		PeriodYear:    a.PeriodYear,
		AssignedBy:    a.AssignedBy,
		CreatedAt:     a.CreatedAt,
	}
}

package onboarding

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateTaskRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Phase       string  `json:"phase"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`

	due *time.Time
}

func (r *CreateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !Phase(r.Phase).Valid() {
		errs = append(errs, validator.ValidationError{Field: "phase", Message: "phase must be preboarding or onboarding"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if r.DueDate != nil {
		due, ok := validator.IsValidDate(*r.DueDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "due_date", Message: "due_date must be in " + validator.DateLayout + " format"})
		} else {
			r.due = &due
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateTaskRequest) Due() *time.Time {
	return r.due
}

type ChangeStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

func (r *ChangeStatusRequest) Validate() error {
	if validator.IsEmpty(r.Status) {
		return validator.Fail("status", "status is required")
	}
	if Status(r.Status) == StatusWaived && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		return validator.Fail("reason", "reason is required when waiving a task")
	}
	return nil
}

type TaskResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	Phase        Phase           `json:"phase"`
	Title        string          `json:"title"`
	Description  *string         `json:"description,omitempty"`
	DueDate      *string         `json:"due_date,omitempty"`
	Status       status.Option   `json:"status"`
	NextStatuses []status.Option `json:"next_statuses"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	WaiveReason  *string         `json:"waive_reason,omitempty"`
}

func NewTaskResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		EmployeeID:   t.EmployeeID,
		Phase:        t.Phase,
		Title:        t.Title,
		Description:  t.Description,
		Status:       Machine.Option(t.Status),
		NextStatuses: Machine.NextOptions(t.Status),
		CompletedAt:  t.CompletedAt,
		WaiveReason:  t.WaiveReason,
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(validator.DateLayout)
		resp.DueDate = &d
	}
	return resp
}

type PhaseProgressResponse struct {
	Phase     Phase `json:"phase"`
	Total     int   `json:"total"`
	Completed int   `json:"completed"`
	Waived    int   `json:"waived"`
	Percent   int   `json:"percent"`
}

type ProgressResponse struct {
	EmployeeID string                  `json:"employee_id"`
	Phases     []PhaseProgressResponse `json:"phases"`
}

func NewProgressResponse(employeeID string, progress []PhaseProgress) ProgressResponse {
	resp := ProgressResponse{EmployeeID: employeeID, Phases: make([]PhaseProgressResponse, 0, len(progress))}
	for _, p := range progress {
		resp.Phases = append(resp.Phases, PhaseProgressResponse{
			Phase:     p.Phase,
			Total:     p.Total,
			Completed: p.Completed,
			Waived:    p.Waived,
			Percent:   p.Percent(),
		})
	}
	return resp
}

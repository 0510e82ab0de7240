package goal

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateRequest struct {
	EmployeeID  string  `json:"employee_id,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`

	due *time.Time
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if r.ParentID != nil && !validator.IsValidUUID(*r.ParentID) {
		errs = append(errs, validator.ValidationError{Field: "parent_id", Message: "parent_id must be a valid UUID"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if r.DueDate != nil {
		due, ok := validator.IsValidDate(*r.DueDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "due_date", Message: "due_date must be in " + validator.DateLayout + " format"})
		}
		r.due = &due
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateRequest) Due() *time.Time {
	return r.due
}

// MoveRequest reparents a goal. A nil ParentID makes it a root goal.
type MoveRequest struct {
	ParentID *string `json:"parent_id"`
}

func (r *MoveRequest) Validate() error {
	if r.ParentID != nil && !validator.IsValidUUID(*r.ParentID) {
		return validator.Fail("parent_id", "parent_id must be a valid UUID")
	}
	return nil
}

func (r *MoveRequest) Parent() string {
	if r.ParentID == nil {
		return ""
	}
	return *r.ParentID
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

type Response struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	ParentID     *string         `json:"parent_id,omitempty"`
	Title        string          `json:"title"`
	Description  *string         `json:"description,omitempty"`
	DueDate      *string         `json:"due_date,omitempty"`
	Status       status.Option   `json:"status"`
	NextStatuses []status.Option `json:"next_statuses"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Children     []Response      `json:"children,omitempty"`
}

func NewResponse(g Goal) Response {
	resp := Response{
		ID:           g.ID,
		EmployeeID:   g.EmployeeID,
		ParentID:     g.ParentID,
		Title:        g.Title,
		Description:  g.Description,
		Status:       Machine.Option(g.Status),
		NextStatuses: Machine.NextOptions(g.Status),
		CompletedAt:  g.CompletedAt,
	}
	if g.DueDate != nil {
		d := g.DueDate.Format(validator.DateLayout)
		resp.DueDate = &d
	}
	for _, c := range g.Children {
		resp.Children = append(resp.Children, NewResponse(c))
	}
	return resp
}

package department

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if r.ParentID != nil && !validator.IsValidUUID(*r.ParentID) {
		errs = append(errs, validator.ValidationError{Field: "parent_id", Message: "parent_id must be a valid UUID"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RenameRequest struct {
	Name string `json:"name"`
}

func (r *RenameRequest) Validate() error {
	if validator.IsEmpty(r.Name) {
		return validator.Fail("name", "name is required")
	}
	return nil
}

// MoveRequest reparents a department. A nil ParentID makes it a root.
type MoveRequest struct {
	ParentID *string `json:"parent_id"`
}

func (r *MoveRequest) Validate() error {
	if r.ParentID != nil && !validator.IsValidUUID(*r.ParentID) {
		return validator.Fail("parent_id", "parent_id must be a valid UUID")
	}
	return nil
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewResponse(d Department) Response {
	return Response{
		ID:        d.ID,
		Name:      d.Name,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

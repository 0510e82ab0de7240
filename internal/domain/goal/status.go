package goal

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var Machine = status.NewMachine("goal", status.SameNoop,
	map[Status]status.Meta{
		StatusDraft:     {Label: "Draft", Color: "secondary", Editable: true},
		StatusActive:    {Label: "Active", Color: "primary", Editable: true},
		StatusCompleted: {Label: "Completed", Color: "success", Terminal: true},
		StatusCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[Status][]Status{
		StatusDraft:  {StatusActive, StatusCancelled},
		StatusActive: {StatusCompleted, StatusCancelled},
	},
)

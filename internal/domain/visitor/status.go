package visitor

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// Checking a visitor in twice is a front desk mistake and must be reported.
var Machine = status.NewMachine("visit", status.SameReject,
	map[Status]status.Meta{
		StatusScheduled:  {Label: "Scheduled", Color: "primary", Editable: true},
		StatusCheckedIn:  {Label: "Checked in", Color: "success"},
		StatusCheckedOut: {Label: "Checked out", Color: "secondary", Terminal: true},
		StatusCancelled:  {Label: "Cancelled", Color: "dark", Terminal: true},
		StatusNoShow:     {Label: "No show", Color: "danger", Terminal: true},
	},
	map[Status][]Status{
		StatusScheduled: {StatusCheckedIn, StatusCancelled, StatusNoShow},
		StatusCheckedIn: {StatusCheckedOut},
	},
)

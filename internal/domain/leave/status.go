package leave

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusPending   ApplicationStatus = "pending"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusCancelled ApplicationStatus = "cancelled"
)

var ApplicationMachine = status.NewMachine("leave application", status.SameNoop,
	map[ApplicationStatus]status.Meta{
		StatusDraft:     {Label: "Draft", Color: "secondary", Editable: true},
		StatusPending:   {Label: "Pending Approval", Color: "warning"},
		StatusApproved:  {Label: "Approved", Color: "success", Terminal: true},
		StatusRejected:  {Label: "Rejected", Color: "danger", Terminal: true},
		StatusCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[ApplicationStatus][]ApplicationStatus{
		StatusDraft:   {StatusPending, StatusCancelled},
		StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
	},
)

// ActiveStatuses occupy the calendar for overlap checks.
var ActiveStatuses = []ApplicationStatus{StatusPending, StatusApproved}

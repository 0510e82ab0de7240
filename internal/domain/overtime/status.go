package overtime

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

var RequestMachine = status.NewMachine("overtime request", status.SameNoop,
	map[RequestStatus]status.Meta{
		StatusPending:   {Label: "Pending Approval", Color: "warning"},
		StatusApproved:  {Label: "Approved", Color: "success", Terminal: true},
		StatusRejected:  {Label: "Rejected", Color: "danger", Terminal: true},
		StatusCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[RequestStatus][]RequestStatus{
		StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
	},
)

var ActiveStatuses = []RequestStatus{StatusPending, StatusApproved}

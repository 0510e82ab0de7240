package loan

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
)

var ApplicationMachine = status.NewMachine("loan application", status.SameNoop,
	map[ApplicationStatus]status.Meta{
		ApplicationPending:   {Label: "Pending Approval", Color: "warning", Editable: true},
		ApplicationApproved:  {Label: "Approved", Color: "success", Terminal: true},
		ApplicationRejected:  {Label: "Rejected", Color: "danger", Terminal: true},
		ApplicationCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[ApplicationStatus][]ApplicationStatus{
		ApplicationPending: {ApplicationApproved, ApplicationRejected, ApplicationCancelled},
	},
)

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanDefaulted LoanStatus = "defaulted"
	LoanCancelled LoanStatus = "cancelled"
)

var LoanMachine = status.NewMachine("loan", status.SameNoop,
	map[LoanStatus]status.Meta{
		LoanActive:    {Label: "Active", Color: "primary"},
		LoanCompleted: {Label: "Paid Off", Color: "success", Terminal: true},
		LoanDefaulted: {Label: "Defaulted", Color: "danger"},
		LoanCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[LoanStatus][]LoanStatus{
		LoanActive:    {LoanCompleted, LoanDefaulted, LoanCancelled},
		LoanDefaulted: {LoanActive, LoanCompleted},
	},
)

// Repayable loans accept payments.
func (s LoanStatus) Repayable() bool {
	return s == LoanActive || s == LoanDefaulted
}

type DeductionStatus string

const (
	DeductionScheduled DeductionStatus = "scheduled"
	DeductionDeducted  DeductionStatus = "deducted"
	DeductionCancelled DeductionStatus = "cancelled"
)

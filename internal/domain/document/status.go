package document

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusReleased   Status = "released"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

var Machine = status.NewMachine("document request", status.SameNoop,
	map[Status]status.Meta{
		StatusPending:    {Label: "Pending", Color: "warning", Editable: true},
		StatusProcessing: {Label: "Processing", Color: "info"},
		StatusReady:      {Label: "Ready for pickup", Color: "primary"},
		StatusReleased:   {Label: "Released", Color: "success", Terminal: true},
		StatusRejected:   {Label: "Rejected", Color: "danger", Terminal: true},
		StatusCancelled:  {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusRejected, StatusCancelled},
		StatusProcessing: {StatusReady, StatusRejected},
		StatusReady:      {StatusReleased},
	},
)

// OpenStatuses block another request of the same type.
var OpenStatuses = []Status{StatusPending, StatusProcessing, StatusReady}

type Type string

const (
	TypeEmploymentCertificate Type = "employment_certificate"
	TypeSalaryCertificate     Type = "salary_certificate"
	TypeCertificateOfService  Type = "certificate_of_service"
	TypeTaxForm               Type = "tax_form"
	TypeOther                 Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeEmploymentCertificate, TypeSalaryCertificate, TypeCertificateOfService, TypeTaxForm, TypeOther:
		return true
	}
	return false
}

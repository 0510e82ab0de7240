package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
)

type Employee struct {
	ID               string
	UserID           *string
	CompanyID        string
	DepartmentID     *string
	EmployeeCode     string
	FullName         string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// Leaving twice is an operator error, so same-state moves are rejected.
var EmploymentMachine = status.NewMachine("employee", status.SameReject,
	map[EmploymentStatus]status.Meta{
		EmploymentStatusActive:     {Label: "Active", Color: "success", Editable: true},
		EmploymentStatusResigned:   {Label: "Resigned", Color: "secondary", Terminal: true},
		EmploymentStatusTerminated: {Label: "Terminated", Color: "danger", Terminal: true},
	},
	map[EmploymentStatus][]EmploymentStatus{
		EmploymentStatusActive: {EmploymentStatusResigned, EmploymentStatusTerminated},
	},
)

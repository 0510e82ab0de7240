package document

import "time"

type Request struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	DocumentType    Type
	Purpose         string
	Status          Status
	HandledBy       *string // user id of the last processor
	RejectionReason *string
	ReleasedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	EmployeeName *string
}

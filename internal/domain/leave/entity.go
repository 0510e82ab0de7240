package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID        string
	CompanyID string
	Name      string
	Code      *string
	Color     *string

	// Policy Rules
	IsActive        bool
	RequiresBalance bool

	// Request Rules
	MinNoticeDays     int
	MaxDaysPerRequest *int
	AllowBackdate     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveApplication entity
type LeaveApplication struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	Days      decimal.Decimal // working days
	Reason    string

	Status          ApplicationStatus
	BalanceReserved bool // pending days were taken from the balance on submit
	SubmittedAt     *time.Time
	DecidedAt       *time.Time

	CancelledBy        *string
	CancelledAt        *time.Time
	CancellationReason *string

	// Approval levels, loaded separately
	Chain approval.Chain

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeName *string
	EmployeeName  *string
}

func (a LeaveApplication) Year() int {
	return a.StartDate.Year()
}

// WorkingDays counts Monday to Friday in the inclusive range.
func WorkingDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

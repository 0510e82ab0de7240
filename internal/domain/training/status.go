package training

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

var SessionMachine = status.NewMachine("training session", status.SameNoop,
	map[SessionStatus]status.Meta{
		SessionScheduled: {Label: "Scheduled", Color: "primary", Editable: true},
		SessionOngoing:   {Label: "Ongoing", Color: "info"},
		SessionCompleted: {Label: "Completed", Color: "success", Terminal: true},
		SessionCancelled: {Label: "Cancelled", Color: "dark", Terminal: true},
	},
	map[SessionStatus][]SessionStatus{
		SessionScheduled: {SessionOngoing, SessionCancelled},
		SessionOngoing:   {SessionCompleted},
	},
)

type EnrollmentStatus string

const (
	EnrollmentWaitlisted EnrollmentStatus = "waitlisted"
	EnrollmentConfirmed  EnrollmentStatus = "confirmed"
	EnrollmentCancelled  EnrollmentStatus = "cancelled"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

var EnrollmentMachine = status.NewMachine("training enrollment", status.SameNoop,
	map[EnrollmentStatus]status.Meta{
		EnrollmentWaitlisted: {Label: "Waitlisted", Color: "warning"},
		EnrollmentConfirmed:  {Label: "Confirmed", Color: "primary"},
		EnrollmentCancelled:  {Label: "Cancelled", Color: "dark", Terminal: true},
		EnrollmentCompleted:  {Label: "Completed", Color: "success", Terminal: true},
	},
	map[EnrollmentStatus][]EnrollmentStatus{
		EnrollmentWaitlisted: {EnrollmentConfirmed, EnrollmentCancelled},
		EnrollmentConfirmed:  {EnrollmentCancelled, EnrollmentCompleted},
	},
)

// ActiveEnrollmentStatuses hold a seat or a place in line.
var ActiveEnrollmentStatuses = []EnrollmentStatus{EnrollmentWaitlisted, EnrollmentConfirmed}

func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentWaitlisted || s == EnrollmentConfirmed
}

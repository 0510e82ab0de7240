package onboarding

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusWaived     Status = "waived"
)

var Machine = status.NewMachine("onboarding task", status.SameNoop,
	map[Status]status.Meta{
		StatusPending:    {Label: "Pending", Color: "secondary", Editable: true},
		StatusInProgress: {Label: "In progress", Color: "info", Editable: true},
		StatusCompleted:  {Label: "Completed", Color: "success", Terminal: true},
		StatusWaived:     {Label: "Waived", Color: "dark", Terminal: true},
	},
	map[Status][]Status{
		StatusPending:    {StatusInProgress, StatusCompleted, StatusWaived},
		StatusInProgress: {StatusCompleted, StatusWaived},
	},
)

type Phase string

const (
	PhasePreboarding Phase = "preboarding"
	PhaseOnboarding  Phase = "onboarding"
)

var Phases = []Phase{PhasePreboarding, PhaseOnboarding}

func (p Phase) Valid() bool {
	return p == PhasePreboarding || p == PhaseOnboarding
}

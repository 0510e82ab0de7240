package onboarding

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	Phase       Phase
	Title       string
	Description *string
	DueDate     *time.Time
	Status      Status
	StartedAt   *time.Time
	CompletedAt *time.Time
	WaivedBy    *string
	WaiveReason *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeTitle is the form titles are compared in.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

type PhaseProgress struct {
	Phase     Phase
	Total     int
	Completed int
	Waived    int
}

// Done counts completed and waived tasks.
func (p PhaseProgress) Done() int {
	return p.Completed + p.Waived
}

// Percent is rounded down. A phase without tasks counts as done.
func (p PhaseProgress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Done() * 100 / p.Total
}

// Summarize returns one entry per phase in Phases order.
func Summarize(tasks []Task) []PhaseProgress {
	byPhase := make(map[Phase]*PhaseProgress, len(Phases))
	out := make([]PhaseProgress, len(Phases))
	for i, phase := range Phases {
		out[i].Phase = phase
		byPhase[phase] = &out[i]
	}
	for _, t := range tasks {
		p, ok := byPhase[t.Phase]
		if !ok {
			continue
		}
		p.Total++
		switch t.Status {
		case StatusCompleted:
			p.Completed++
		case StatusWaived:
			p.Waived++
		}
	}
	return out
}

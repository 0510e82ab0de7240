package competency

import "time"

// Assignment links an employee to a competency at a target proficiency level.
type Assignment struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	CompetencyID string
	Level        int
	AssignedBy   string
	CreatedAt    time.Time
}

// KPIAssignment enrolls a participant in a KPI template for one year.
type KPIAssignment struct {
	ID            string
	CompanyID     string
	TemplateID    string
	ParticipantID string
	PeriodYear    int
	AssignedBy    string
	CreatedAt     time.Time
}

const (
	MinLevel = 1
	MaxLevel = 5
)

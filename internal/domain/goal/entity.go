package goal

import "time"

type Goal struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	ParentID    *string
	Title       string
	Description *string
	DueDate     *time.Time
	Status      Status
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Children []Goal
}

// OpenChildren returns the children that are neither completed nor cancelled.
func OpenChildren(children []Goal) []Goal {
	var open []Goal
	for _, c := range children {
		if !Machine.IsTerminal(c.Status) {
			open = append(open, c)
		}
	}
	return open
}

package department

import (
	"strings"
	"time"
)

type Department struct {
	ID        string
	CompanyID string
	Name      string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Department) Parent() string {
	if d.ParentID == nil {
		return ""
	}
	return *d.ParentID
}

// NormalizeName is the form sibling names are compared in.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve and administer workflows
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee, RolePending:
		return true
	}
	return false
}

// IsManager reports whether the role may act on other employees' records.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}

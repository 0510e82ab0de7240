package user

type Permission string

const (
	// Leave and overtime
	PermissionLeaveViewOwn    Permission = "leave.view_own"
	PermissionLeaveCreate     Permission = "leave.create"
	PermissionLeaveViewAll    Permission = "leave.view_all"
	PermissionLeaveApprove    Permission = "leave.approve"
	PermissionLeaveAdjust     Permission = "leave.adjust_balance"
	PermissionOvertimeApprove Permission = "overtime.approve"

	// Loans
	PermissionLoanApply   Permission = "loan.apply"
	PermissionLoanApprove Permission = "loan.approve"
	PermissionLoanManage  Permission = "loan.manage"

	// Payroll
	PermissionPayrollManage Permission = "payroll.manage"
	PermissionPayrollPay    Permission = "payroll.pay"

	// Training, evaluation, goals
	PermissionTrainingManage   Permission = "training.manage"
	PermissionEvaluationManage Permission = "evaluation.manage"
	PermissionGoalManage       Permission = "goal.manage"

	// Organization
	PermissionDepartmentManage Permission = "department.manage"
	PermissionCompetencyManage Permission = "competency.manage"
	PermissionEmployeeManage   Permission = "employee.manage"

	// Front office
	PermissionDocumentProcess Permission = "document.process"
	PermissionVisitorManage   Permission = "visitor.manage"
	PermissionOnboardingWaive Permission = "onboarding.waive"
)

var employeePermissions = []Permission{
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionLoanApply,
}

var managerPermissions = append([]Permission{
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionLeaveAdjust,
	PermissionOvertimeApprove,
	PermissionLoanApprove,
	PermissionLoanManage,
	PermissionPayrollManage,
	PermissionTrainingManage,
	PermissionEvaluationManage,
	PermissionGoalManage,
	PermissionDepartmentManage,
	PermissionCompetencyManage,
	PermissionEmployeeManage,
	PermissionDocumentProcess,
	PermissionVisitorManage,
	PermissionOnboardingWaive,
}, employeePermissions...)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: append([]Permission{
		PermissionPayrollPay,
	}, managerPermissions...),
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

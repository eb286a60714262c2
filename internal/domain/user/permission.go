package user

type Permission string

const (
	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollManage  Permission = "payroll.manage"
	PermissionPayrollViewOwn Permission = "payroll.view_own"

	// Loans
	PermissionLoanView    Permission = "loan.view"
	PermissionLoanManage  Permission = "loan.manage"
	PermissionLoanViewOwn Permission = "loan.view_own"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollViewOwn,
		PermissionLoanView,
		PermissionLoanManage,
		PermissionLoanViewOwn,
	},
	RolePayrollOfficer: {
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionPayrollViewOwn,
		PermissionLoanView,
		PermissionLoanManage,
		PermissionLoanViewOwn,
	},
	RoleEmployee: {
		PermissionPayrollViewOwn,
		PermissionLoanViewOwn,
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

package employee

import "context"

// EmployeeRepository is the read side of the employee directory and of the
// allowance/benefit configuration consumed by payroll runs.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetAllowanceGrants(ctx context.Context, employeeID string) ([]AllowanceGrant, error)
	GetBenefitGrants(ctx context.Context, employeeID string) ([]BenefitGrant, error)
}

package employee

import (
	"github.com/shopspring/decimal"
)

// Employee is the payroll view of an employee directory entry.
type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	DepartmentName   *string
	PositionName     *string
	BaseSalary       decimal.Decimal // daily rate
	NightHours       decimal.Decimal
	NightRate        decimal.Decimal // percent of the hourly rate
	EmploymentStatus EmploymentStatus
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// AllowanceGrant is a monthly allowance configured for an employee.
type AllowanceGrant struct {
	EmployeeID        string
	AllowanceTypeID   string
	AllowanceTypeName string
	Amount            decimal.Decimal
}

// BenefitGrant is a monthly benefit contribution withheld from an employee's pay.
type BenefitGrant struct {
	EmployeeID      string
	BenefitTypeID   string
	BenefitTypeName string
	Amount          decimal.Decimal
}

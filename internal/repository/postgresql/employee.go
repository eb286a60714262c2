package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT e.id, e.employee_code, e.full_name, d.name, p.name,
			e.base_salary, e.night_hours, e.night_rate, e.employment_status
		FROM employees e
		LEFT JOIN departments d ON e.department_id = d.id
		LEFT JOIN positions p ON e.position_id = p.id
		WHERE e.id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.DepartmentName, &emp.PositionName,
		&emp.BaseSalary, &emp.NightHours, &emp.NightRate, &emp.EmploymentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}

	return emp, nil
}

// GetAllowanceGrants implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetAllowanceGrants(ctx context.Context, employeeID string) ([]employee.AllowanceGrant, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ea.employee_id, ea.allowance_type_id, at.name, ea.amount
		FROM employee_allowances ea
		JOIN allowance_types at ON ea.allowance_type_id = at.id
		WHERE ea.employee_id = $1 AND ea.is_active = TRUE
		ORDER BY at.name
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowance grants: %w", err)
	}
	defer rows.Close()

	var grants []employee.AllowanceGrant
	for rows.Next() {
		var g employee.AllowanceGrant
		if err := rows.Scan(&g.EmployeeID, &g.AllowanceTypeID, &g.AllowanceTypeName, &g.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan allowance grant: %w", err)
		}
		grants = append(grants, g)
	}

	return grants, rows.Err()
}

// GetBenefitGrants implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetBenefitGrants(ctx context.Context, employeeID string) ([]employee.BenefitGrant, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT eb.employee_id, eb.benefit_type_id, bt.name, eb.amount
		FROM employee_benefits eb
		JOIN benefit_types bt ON eb.benefit_type_id = bt.id
		WHERE eb.employee_id = $1 AND eb.is_active = TRUE
		ORDER BY bt.name
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get benefit grants: %w", err)
	}
	defer rows.Close()

	var grants []employee.BenefitGrant
	for rows.Next() {
		var g employee.BenefitGrant
		if err := rows.Scan(&g.EmployeeID, &g.BenefitTypeID, &g.BenefitTypeName, &g.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan benefit grant: %w", err)
		}
		grants = append(grants, g)
	}

	return grants, rows.Err()
}

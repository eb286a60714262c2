package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

// ========== LOAN TYPES ==========

const loanTypeColumns = `id, name, interest_rate, amount_limit, max_term_months, is_active, created_at, updated_at`

func scanLoanType(row pgx.Row) (loan.LoanType, error) {
	var lt loan.LoanType
	err := row.Scan(&lt.ID, &lt.Name, &lt.InterestRate, &lt.AmountLimit, &lt.MaxTermMonths, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt)
	return lt, err
}

func (r *loanRepository) CreateLoanType(ctx context.Context, lt loan.LoanType) (loan.LoanType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loan_types (id, name, interest_rate, amount_limit, max_term_months, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + loanTypeColumns

	created, err := scanLoanType(q.QueryRow(ctx, query, lt.ID, lt.Name, lt.InterestRate, lt.AmountLimit, lt.MaxTermMonths, lt.IsActive))
	if err != nil {
		if isUniqueViolation(err, "loan_types_name_key") {
			return loan.LoanType{}, loan.ErrLoanTypeNameExists
		}
		return loan.LoanType{}, fmt.Errorf("failed to create loan type: %w", err)
	}
	return created, nil
}

func (r *loanRepository) GetLoanTypeByID(ctx context.Context, id string) (loan.LoanType, error) {
	q := GetQuerier(ctx, r.db)

	lt, err := scanLoanType(q.QueryRow(ctx, `SELECT `+loanTypeColumns+` FROM loan_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.LoanType{}, loan.ErrLoanTypeNotFound
		}
		return loan.LoanType{}, fmt.Errorf("failed to get loan type: %w", err)
	}
	return lt, nil
}

func (r *loanRepository) ListLoanTypes(ctx context.Context, activeOnly bool) ([]loan.LoanType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanTypeColumns + ` FROM loan_types`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan types: %w", err)
	}
	defer rows.Close()

	var types []loan.LoanType
	for rows.Next() {
		lt, err := scanLoanType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan type: %w", err)
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

// ========== LOANS ==========

const loanSelect = `
	SELECT l.id, l.employee_id, l.loan_type_id, l.principal, l.interest_rate, l.total_payable,
		l.balance_amount, l.monthly_amortization, l.term_months, l.start_date, l.end_date,
		l.status, l.created_at, l.updated_at, lt.name, e.full_name
	FROM loans l
	JOIN loan_types lt ON l.loan_type_id = lt.id
	LEFT JOIN employees e ON l.employee_id = e.id
`

func scanLoan(row pgx.Row) (loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LoanTypeID, &l.Principal, &l.InterestRate, &l.TotalPayable,
		&l.BalanceAmount, &l.MonthlyAmortization, &l.TermMonths, &l.StartDate, &l.EndDate,
		&l.Status, &l.CreatedAt, &l.UpdatedAt, &l.LoanTypeName, &l.EmployeeName,
	)
	return l, err
}

func (r *loanRepository) Create(ctx context.Context, l loan.Loan) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loans (id, employee_id, loan_type_id, principal, interest_rate, total_payable,
			balance_amount, monthly_amortization, term_months, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		l.ID, l.EmployeeID, l.LoanTypeID, l.Principal, l.InterestRate, l.TotalPayable,
		l.BalanceAmount, l.MonthlyAmortization, l.TermMonths, l.StartDate, l.EndDate, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return loan.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}
	return l, nil
}

func (r *loanRepository) getByID(ctx context.Context, id string, forUpdate bool) (loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := loanSelect + ` WHERE l.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF l`
	}

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.Loan{}, loan.ErrLoanNotFound
		}
		return loan.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}
	return l, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (loan.Loan, error) {
	return r.getByID(ctx, id, false)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id string) (loan.Loan, error) {
	return r.getByID(ctx, id, true)
}

func (r *loanRepository) List(ctx context.Context, filter loan.LoanFilter) ([]loan.Loan, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND l.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND l.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM loans l`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := loanSelect + where + fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, total, rows.Err()
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id string, status loan.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

// GetActiveByEmployeeForUpdate locks the employee's active loans until the
// surrounding transaction ends.
func (r *loanRepository) GetActiveByEmployeeForUpdate(ctx context.Context, employeeID string) ([]loan.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := loanSelect + ` WHERE l.employee_id = $1 AND l.status = $2 ORDER BY l.start_date, l.id FOR UPDATE OF l`

	rows, err := q.Query(ctx, query, employeeID, loan.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active loans: %w", err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *loanRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, status loan.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE loans SET balance_amount = $1, status = $2, updated_at = NOW() WHERE id = $3`, balance, status, id)
	if err != nil {
		return fmt.Errorf("failed to update loan balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

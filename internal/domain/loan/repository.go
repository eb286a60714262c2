package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type LoanRepository interface {
	// Loan types
	CreateLoanType(ctx context.Context, loanType LoanType) (LoanType, error)
	GetLoanTypeByID(ctx context.Context, id string) (LoanType, error)
	ListLoanTypes(ctx context.Context, activeOnly bool) ([]LoanType, error)

	// Loans
	Create(ctx context.Context, l Loan) (Loan, error)
	GetByID(ctx context.Context, id string) (Loan, error)
	GetByIDForUpdate(ctx context.Context, id string) (Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]Loan, int64, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// Payroll run support. Both must be called inside the run transaction.
	GetActiveByEmployeeForUpdate(ctx context.Context, employeeID string) ([]Loan, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, status Status) error
}

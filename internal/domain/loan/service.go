package loan

import "context"

type LoanService interface {
	CreateLoanType(ctx context.Context, req CreateLoanTypeRequest) (LoanTypeResponse, error)
	ListLoanTypes(ctx context.Context, activeOnly bool) ([]LoanTypeResponse, error)
	GetLoanType(ctx context.Context, id string) (LoanTypeResponse, error)

	CreateLoan(ctx context.Context, req CreateLoanRequest) (LoanResponse, error)
	GetLoan(ctx context.Context, id string) (LoanResponse, error)
	GetLoanSchedule(ctx context.Context, id string) (LoanScheduleResponse, error)
	ListLoans(ctx context.Context, filter LoanFilter) (ListLoanResponse, error)
	ListMyLoans(ctx context.Context, filter LoanFilter) (ListLoanResponse, error)

	ApproveLoan(ctx context.Context, id string) (LoanResponse, error)
	CancelLoan(ctx context.Context, id string) (LoanResponse, error)
	MarkLoanDefaulted(ctx context.Context, id string) (LoanResponse, error)
}

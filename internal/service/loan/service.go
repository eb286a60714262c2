package loan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type LoanServiceImpl struct {
	tx           database.Transactor
	loanRepo     loan.LoanRepository
	employeeRepo employee.EmployeeRepository
}

func NewLoanService(tx database.Transactor, loanRepo loan.LoanRepository, employeeRepo employee.EmployeeRepository) loan.LoanService {
	return &LoanServiceImpl{
		tx:           tx,
		loanRepo:     loanRepo,
		employeeRepo: employeeRepo,
	}
}

// ========== LOAN TYPES ==========

func (s *LoanServiceImpl) CreateLoanType(ctx context.Context, req loan.CreateLoanTypeRequest) (loan.LoanTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanTypeResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := s.loanRepo.CreateLoanType(ctx, loan.LoanType{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Name:          strings.TrimSpace(req.Name),
		InterestRate:  req.InterestRate.Round(2),
		AmountLimit:   req.AmountLimit.Round(2),
		MaxTermMonths: req.MaxTermMonths,
		IsActive:      isActive,
	})
	if err != nil {
		return loan.LoanTypeResponse{}, err
	}
	return toLoanTypeResponse(created), nil
}

func (s *LoanServiceImpl) ListLoanTypes(ctx context.Context, activeOnly bool) ([]loan.LoanTypeResponse, error) {
	types, err := s.loanRepo.ListLoanTypes(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]loan.LoanTypeResponse, 0, len(types))
	for _, lt := range types {
		resp = append(resp, toLoanTypeResponse(lt))
	}
	return resp, nil
}

func (s *LoanServiceImpl) GetLoanType(ctx context.Context, id string) (loan.LoanTypeResponse, error) {
	lt, err := s.loanRepo.GetLoanTypeByID(ctx, id)
	if err != nil {
		return loan.LoanTypeResponse{}, err
	}
	return toLoanTypeResponse(lt), nil
}

// ========== LOANS ==========

// CreateLoan books a pending loan with flat interest. The loan only starts
// amortizing through payroll once approved.
func (s *LoanServiceImpl) CreateLoan(ctx context.Context, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return loan.LoanResponse{}, err
	}

	lt, err := s.loanRepo.GetLoanTypeByID(ctx, req.LoanTypeID)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	if !lt.IsActive {
		return loan.LoanResponse{}, loan.ErrLoanTypeInactive
	}
	if req.Principal.GreaterThan(lt.AmountLimit) {
		return loan.LoanResponse{}, fmt.Errorf("%w: limit is %s", loan.ErrPrincipalExceedsLimit, lt.AmountLimit.StringFixed(2))
	}
	if req.TermMonths > lt.MaxTermMonths {
		return loan.LoanResponse{}, fmt.Errorf("%w: maximum is %d months", loan.ErrTermExceedsMaximum, lt.MaxTermMonths)
	}

	start, _ := time.Parse(validator.DateLayout, req.StartDate)
	principal := req.Principal.Round(2)
	total, monthly := loan.Terms(principal, lt.InterestRate, req.TermMonths)

	created, err := s.loanRepo.Create(ctx, loan.Loan{
		ID:                  uuid.Must(uuid.NewV7()).String(),
		EmployeeID:          req.EmployeeID,
		LoanTypeID:          lt.ID,
		Principal:           principal,
		InterestRate:        lt.InterestRate,
		TotalPayable:        total,
		BalanceAmount:       total,
		MonthlyAmortization: monthly,
		TermMonths:          req.TermMonths,
		StartDate:           start,
		EndDate:             start.AddDate(0, req.TermMonths, 0),
		Status:              loan.StatusPending,
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	slog.InfoContext(ctx, "loan created", "loan_id", created.ID, "employee_id", created.EmployeeID, "total_payable", total.StringFixed(2))

	// Reload to pick up joined names.
	return s.GetLoan(ctx, created.ID)
}

func (s *LoanServiceImpl) GetLoan(ctx context.Context, id string) (loan.LoanResponse, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	return toLoanResponse(l), nil
}

func (s *LoanServiceImpl) GetLoanSchedule(ctx context.Context, id string) (loan.LoanScheduleResponse, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return loan.LoanScheduleResponse{}, err
	}

	schedule := l.Schedule()
	entries := make([]loan.ScheduleEntryResponse, 0, len(schedule))
	for _, e := range schedule {
		entries = append(entries, loan.ScheduleEntryResponse{
			Installment:      e.Installment,
			DueDate:          e.DueDate.Format(validator.DateLayout),
			Amount:           e.Amount,
			RemainingBalance: e.RemainingBalance,
			Settled:          e.Settled,
		})
	}

	return loan.LoanScheduleResponse{
		Loan:    toLoanResponse(l),
		Entries: entries,
	}, nil
}

func (s *LoanServiceImpl) ListLoans(ctx context.Context, filter loan.LoanFilter) (loan.ListLoanResponse, error) {
	if err := filter.Validate(); err != nil {
		return loan.ListLoanResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	loans, total, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return loan.ListLoanResponse{}, err
	}

	data := make([]loan.LoanResponse, 0, len(loans))
	for _, l := range loans {
		data = append(data, toLoanResponse(l))
	}

	return loan.ListLoanResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *LoanServiceImpl) ListMyLoans(ctx context.Context, filter loan.LoanFilter) (loan.ListLoanResponse, error) {
	employeeID, err := user.CurrentEmployeeID(ctx)
	if err != nil {
		return loan.ListLoanResponse{}, err
	}
	filter.EmployeeID = &employeeID
	return s.ListLoans(ctx, filter)
}

func (s *LoanServiceImpl) ApproveLoan(ctx context.Context, id string) (loan.LoanResponse, error) {
	return s.transition(ctx, id, loan.StatusActive)
}

func (s *LoanServiceImpl) CancelLoan(ctx context.Context, id string) (loan.LoanResponse, error) {
	return s.transition(ctx, id, loan.StatusCancelled)
}

func (s *LoanServiceImpl) MarkLoanDefaulted(ctx context.Context, id string) (loan.LoanResponse, error) {
	return s.transition(ctx, id, loan.StatusDefaulted)
}

// transition locks the loan so a concurrent payroll run cannot amortize it
// while its status changes.
func (s *LoanServiceImpl) transition(ctx context.Context, id string, next loan.Status) (loan.LoanResponse, error) {
	var from loan.Status
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		l, err := s.loanRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !l.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", loan.ErrInvalidStatusTransition, l.Status, next)
		}
		from = l.Status
		return s.loanRepo.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	slog.InfoContext(ctx, "loan status changed", "loan_id", id, "from", from, "to", next)
	return s.GetLoan(ctx, id)
}

func toLoanTypeResponse(lt loan.LoanType) loan.LoanTypeResponse {
	return loan.LoanTypeResponse{
		ID:            lt.ID,
		Name:          lt.Name,
		InterestRate:  lt.InterestRate,
		AmountLimit:   lt.AmountLimit,
		MaxTermMonths: lt.MaxTermMonths,
		IsActive:      lt.IsActive,
	}
}

func toLoanResponse(l loan.Loan) loan.LoanResponse {
	return loan.LoanResponse{
		ID:                  l.ID,
		EmployeeID:          l.EmployeeID,
		EmployeeName:        l.EmployeeName,
		LoanTypeID:          l.LoanTypeID,
		LoanTypeName:        l.LoanTypeName,
		Principal:           l.Principal,
		InterestRate:        l.InterestRate,
		TotalPayable:        l.TotalPayable,
		BalanceAmount:       l.BalanceAmount,
		MonthlyAmortization: l.MonthlyAmortization,
		TermMonths:          l.TermMonths,
		StartDate:           l.StartDate.Format(validator.DateLayout),
		EndDate:             l.EndDate.Format(validator.DateLayout),
		Status:              string(l.Status),
		CreatedAt:           l.CreatedAt.Format(time.RFC3339),
	}
}

package loan

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== LOAN TYPE DTOs ==========

type CreateLoanTypeRequest struct {
	Name          string          `json:"name"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	AmountLimit   decimal.Decimal `json:"amount_limit"`
	MaxTermMonths int             `json:"max_term_months"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

func (r *CreateLoanTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if r.InterestRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "interest_rate", Message: "must be non-negative"})
	}
	if !r.AmountLimit.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount_limit", Message: "must be greater than 0"})
	}
	if r.MaxTermMonths < 1 {
		errs = append(errs, validator.ValidationError{Field: "max_term_months", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanTypeResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	AmountLimit   decimal.Decimal `json:"amount_limit"`
	MaxTermMonths int             `json:"max_term_months"`
	IsActive      bool            `json:"is_active"`
}

// ========== LOAN DTOs ==========

type CreateLoanRequest struct {
	EmployeeID string          `json:"employee_id"`
	LoanTypeID string          `json:"loan_type_id"`
	Principal  decimal.Decimal `json:"principal"`
	StartDate  string          `json:"start_date"`
	TermMonths int             `json:"term_months"`
}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if validator.IsEmpty(r.LoanTypeID) {
		errs = append(errs, validator.ValidationError{Field: "loan_type_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.LoanTypeID) {
		errs = append(errs, validator.ValidationError{Field: "loan_type_id", Message: "must be a valid UUID"})
	}
	if !r.Principal.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "must be greater than 0"})
	}
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
	}
	if r.TermMonths < 1 {
		errs = append(errs, validator.ValidationError{Field: "term_months", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *LoanFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of pending, active, paid, defaulted, cancelled"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        *string         `json:"employee_name,omitempty"`
	LoanTypeID          string          `json:"loan_type_id"`
	LoanTypeName        *string         `json:"loan_type_name,omitempty"`
	Principal           decimal.Decimal `json:"principal"`
	InterestRate        decimal.Decimal `json:"interest_rate"`
	TotalPayable        decimal.Decimal `json:"total_payable"`
	BalanceAmount       decimal.Decimal `json:"balance_amount"`
	MonthlyAmortization decimal.Decimal `json:"monthly_amortization"`
	TermMonths          int             `json:"term_months"`
	StartDate           string          `json:"start_date"`
	EndDate             string          `json:"end_date"`
	Status              string          `json:"status"`
	CreatedAt           string          `json:"created_at"`
}

type ListLoanResponse struct {
	Data       []LoanResponse `json:"data"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

type ScheduleEntryResponse struct {
	Installment      int             `json:"installment"`
	DueDate          string          `json:"due_date"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Settled          bool            `json:"settled"`
}

type LoanScheduleResponse struct {
	Loan    LoanResponse            `json:"loan"`
	Entries []ScheduleEntryResponse `json:"entries"`
}

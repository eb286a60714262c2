package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusPaid, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

// LoanType - template used when a loan is created
type LoanType struct {
	ID            string
	Name          string
	InterestRate  decimal.Decimal // flat, percent of principal
	AmountLimit   decimal.Decimal
	MaxTermMonths int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Loan - an employee's borrowing, reduced by every payroll run while active
type Loan struct {
	ID                  string
	EmployeeID          string
	LoanTypeID          string
	Principal           decimal.Decimal
	InterestRate        decimal.Decimal
	TotalPayable        decimal.Decimal
	BalanceAmount       decimal.Decimal
	MonthlyAmortization decimal.Decimal
	TermMonths          int
	StartDate           time.Time
	EndDate             time.Time
	Status              Status
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Joined fields
	LoanTypeName *string
	EmployeeName *string
}

// ApplyInstallment deducts one payroll installment from an active loan.
// It returns the amount actually taken, which is capped at the outstanding
// balance, and whether the loan changed. The loan becomes paid once the
// balance reaches zero.
func (l *Loan) ApplyInstallment(installment decimal.Decimal) (applied decimal.Decimal, changed bool) {
	if l.Status != StatusActive || !installment.IsPositive() || !l.BalanceAmount.IsPositive() {
		return decimal.Zero, false
	}

	applied = decimal.Min(installment, l.BalanceAmount)
	l.BalanceAmount = l.BalanceAmount.Sub(applied)
	if l.BalanceAmount.IsZero() {
		l.Status = StatusPaid
	}
	return applied, true
}

var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusDefaulted},
}

// CanTransitionTo reports whether a manual status change is allowed.
// Active to paid only happens through ApplyInstallment.
func (l Loan) CanTransitionTo(next Status) bool {
	for _, s := range allowedTransitions[l.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Terms computes flat-interest loan terms.
func Terms(principal, interestRate decimal.Decimal, termMonths int) (totalPayable, monthlyAmortization decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	totalPayable = principal.Mul(decimal.NewFromInt(1).Add(interestRate.Div(hundred))).Round(2)
	if termMonths <= 0 {
		return totalPayable, totalPayable
	}
	monthlyAmortization = totalPayable.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	return totalPayable, monthlyAmortization
}

// ScheduleEntry is one month of a loan's amortization schedule.
type ScheduleEntry struct {
	Installment      int
	DueDate          time.Time
	Amount           decimal.Decimal
	RemainingBalance decimal.Decimal
	Settled          bool
}

// Schedule lays out the contractual monthly installments. The last one
// absorbs rounding so the installments sum to TotalPayable. An installment is
// settled once cumulative payments cover it.
func (l Loan) Schedule() []ScheduleEntry {
	if l.TermMonths <= 0 {
		return nil
	}

	paid := l.TotalPayable.Sub(l.BalanceAmount)
	entries := make([]ScheduleEntry, 0, l.TermMonths)
	remaining := l.TotalPayable
	cumulative := decimal.Zero

	for i := 1; i <= l.TermMonths; i++ {
		amount := l.MonthlyAmortization
		if i == l.TermMonths || amount.GreaterThan(remaining) {
			amount = remaining
		}
		remaining = remaining.Sub(amount)
		cumulative = cumulative.Add(amount)

		entries = append(entries, ScheduleEntry{
			Installment:      i,
			DueDate:          l.StartDate.AddDate(0, i, 0),
			Amount:           amount,
			RemainingBalance: remaining,
			Settled:          paid.GreaterThanOrEqual(cumulative),
		})
	}
	return entries
}

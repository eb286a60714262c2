package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType controls how much of a monthly entitlement a single run pays out.
type PeriodType string

const (
	PeriodTypeMonthly     PeriodType = "monthly"
	PeriodTypeSemiMonthly PeriodType = "semi_monthly"
	PeriodTypeWeekly      PeriodType = "weekly"
)

func (t PeriodType) IsValid() bool {
	switch t {
	case PeriodTypeMonthly, PeriodTypeSemiMonthly, PeriodTypeWeekly:
		return true
	}
	return false
}

// Fraction is the share of a monthly amount that falls into one period.
func (t PeriodType) Fraction() decimal.Decimal {
	switch t {
	case PeriodTypeSemiMonthly:
		return decimal.NewFromInt(1).Div(decimal.NewFromInt(2))
	case PeriodTypeWeekly:
		return decimal.NewFromInt(12).Div(decimal.NewFromInt(52))
	default:
		return decimal.NewFromInt(1)
	}
}

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft     PeriodStatus = "draft"
	PeriodStatusProcessed PeriodStatus = "processed"
)

// PayrollPeriod - one pay cycle; owns the records generated for it
type PayrollPeriod struct {
	ID             string
	Name           string
	PayDate        time.Time
	CutoffStart    time.Time
	CutoffEnd      time.Time
	PeriodType     PeriodType
	Status         PeriodStatus
	IsArchived     bool
	IdempotencyKey *string
	CreatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Aggregated
	RecordCount int
}

// PayrollRecord - one employee's computed pay for one period.
// Amounts are stored as computed and never recalculated on read.
type PayrollRecord struct {
	ID                     string
	PayrollPeriodID        string
	EmployeeID             string
	DailyRate              decimal.Decimal
	HourlyRate             decimal.Decimal
	DaysWorked             decimal.Decimal
	OvertimeHours          decimal.Decimal
	Absences               decimal.Decimal
	OvertimePay            decimal.Decimal
	NightDiffPay           decimal.Decimal
	GrossBase              decimal.Decimal
	TotalAllowances        decimal.Decimal
	GrossPay               decimal.Decimal
	TotalBenefitDeductions decimal.Decimal
	TotalLoanDeductions    decimal.Decimal
	TotalDeductions        decimal.Decimal
	NetPay                 decimal.Decimal
	IsArchived             bool
	CreatedAt              time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeCode   *string
	DepartmentName *string
	PositionName   *string
	PeriodName     *string
	PayDate        *time.Time
}

// PayrollAllowance - allowance line of a record
type PayrollAllowance struct {
	ID              string
	PayrollRecordID string
	AllowanceTypeID string
	Name            string
	Amount          decimal.Decimal
}

// DeductionKind tags what a deduction line pays for.
type DeductionKind string

const (
	DeductionKindLoan    DeductionKind = "loan"
	DeductionKindBenefit DeductionKind = "benefit"
	DeductionKindOther   DeductionKind = "other"
)

const (
	LoanPaymentLabel    = "Loan Payment"
	OtherDeductionLabel = "Deduction"
)

// Deduction - deduction line of a record. Exactly one of LoanID and
// BenefitTypeID is set for the loan and benefit kinds, neither for other.
// Build values with LoanDeduction, BenefitDeduction or OtherDeduction.
type Deduction struct {
	ID              string
	PayrollRecordID string
	Kind            DeductionKind
	LoanID          *string
	BenefitTypeID   *string
	Name            string
	Amount          decimal.Decimal
}

func LoanDeduction(loanID string, amount decimal.Decimal) Deduction {
	return Deduction{
		Kind:   DeductionKindLoan,
		LoanID: &loanID,
		Name:   LoanPaymentLabel,
		Amount: amount,
	}
}

func BenefitDeduction(benefitTypeID, name string, amount decimal.Decimal) Deduction {
	return Deduction{
		Kind:          DeductionKindBenefit,
		BenefitTypeID: &benefitTypeID,
		Name:          name,
		Amount:        amount,
	}
}

func OtherDeduction(name string, amount decimal.Decimal) Deduction {
	return Deduction{
		Kind:   DeductionKindOther,
		Name:   name,
		Amount: amount,
	}
}

// Label is the payslip caption for the line.
func (d Deduction) Label() string {
	switch d.Kind {
	case DeductionKindLoan:
		return LoanPaymentLabel
	case DeductionKindBenefit:
		if d.Name != "" {
			return d.Name
		}
		return "Benefit"
	default:
		if d.Name != "" {
			return d.Name
		}
		return OtherDeductionLabel
	}
}

// ThirteenthMonth - 13th-month pay for an employee over a date range
type ThirteenthMonth struct {
	ID          string
	EmployeeID  string
	StartDate   time.Time
	EndDate     time.Time
	TotalBasic  decimal.Decimal
	Amount      decimal.Decimal
	GeneratedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// PeriodSummary - totals across the non-archived records of a period
type PeriodSummary struct {
	Headcount              int
	TotalGrossBase         decimal.Decimal
	TotalOvertimePay       decimal.Decimal
	TotalAllowances        decimal.Decimal
	TotalNightDiffPay      decimal.Decimal
	TotalGrossPay          decimal.Decimal
	TotalBenefitDeductions decimal.Decimal
	TotalLoanDeductions    decimal.Decimal
	TotalDeductions        decimal.Decimal
	TotalNetPay            decimal.Decimal
}

package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	DefaultHoursPerDay        = decimal.NewFromInt(8)
	DefaultOvertimeMultiplier = decimal.RequireFromString("1.25")

	hundred = decimal.NewFromInt(100)
)

// RateInput is what the rate resolver needs from the employee directory and
// the run request.
type RateInput struct {
	DailyRate     decimal.Decimal
	DaysWorked    decimal.Decimal
	OvertimeHours decimal.Decimal
	NightHours    decimal.Decimal
	NightRate     decimal.Decimal // percent of the hourly rate
}

type RateResult struct {
	HourlyRate      decimal.Decimal
	NightDiffPerDay decimal.Decimal
	NightDiffPay    decimal.Decimal
	BasicPay        decimal.Decimal
	OvertimePay     decimal.Decimal
	GrossBase       decimal.Decimal
}

// LoanInstallment is the share of one active loan's amortization due this period.
type LoanInstallment struct {
	Loan   loan.Loan
	Amount decimal.Decimal
}

// Entitlements holds the per-line amounts of one employee for one period.
// Every total is the sum of its lines.
type Entitlements struct {
	Allowances            []payroll.PayrollAllowance
	Benefits              []payroll.Deduction
	LoanInstallments      []LoanInstallment
	TotalAllowances       decimal.Decimal
	TotalBenefits         decimal.Decimal
	TotalLoanInstallments decimal.Decimal
}

type Calculator struct {
	hoursPerDay        decimal.Decimal
	overtimeMultiplier decimal.Decimal
}

// NewCalculator falls back to an 8 hour day and a 1.25 overtime multiplier
// for non-positive arguments.
func NewCalculator(hoursPerDay, overtimeMultiplier decimal.Decimal) *Calculator {
	if !hoursPerDay.IsPositive() {
		hoursPerDay = DefaultHoursPerDay
	}
	if !overtimeMultiplier.IsPositive() {
		overtimeMultiplier = DefaultOvertimeMultiplier
	}
	return &Calculator{
		hoursPerDay:        hoursPerDay,
		overtimeMultiplier: overtimeMultiplier,
	}
}

// ResolveRates derives hourly, night differential, overtime and gross base pay.
// Intermediate values keep full precision; results are rounded to centavos.
func (c *Calculator) ResolveRates(in RateInput) RateResult {
	hourly := in.DailyRate.Div(c.hoursPerDay)
	nightPerDay := hourly.Mul(in.NightRate.Div(hundred)).Mul(in.NightHours)
	nightTotal := nightPerDay.Mul(in.DaysWorked)
	overtime := in.OvertimeHours.Mul(hourly).Mul(c.overtimeMultiplier).Round(2)
	basic := in.DailyRate.Mul(in.DaysWorked).Round(2)

	return RateResult{
		HourlyRate:      hourly.Round(2),
		NightDiffPerDay: nightPerDay.Round(2),
		NightDiffPay:    nightTotal.Round(2),
		BasicPay:        basic,
		OvertimePay:     overtime,
		GrossBase:       basic.Add(overtime),
	}
}

// AggregateEntitlements scales every monthly grant and amortization by the
// period fraction. Loans that are not active are skipped.
func (c *Calculator) AggregateEntitlements(
	periodType payroll.PeriodType,
	allowances []employee.AllowanceGrant,
	benefits []employee.BenefitGrant,
	loans []loan.Loan,
) Entitlements {
	fraction := periodType.Fraction()
	ent := Entitlements{
		TotalAllowances:       decimal.Zero,
		TotalBenefits:         decimal.Zero,
		TotalLoanInstallments: decimal.Zero,
	}

	for _, a := range allowances {
		amount := a.Amount.Mul(fraction).Round(2)
		ent.Allowances = append(ent.Allowances, payroll.PayrollAllowance{
			AllowanceTypeID: a.AllowanceTypeID,
			Name:            a.AllowanceTypeName,
			Amount:          amount,
		})
		ent.TotalAllowances = ent.TotalAllowances.Add(amount)
	}

	for _, b := range benefits {
		amount := b.Amount.Mul(fraction).Round(2)
		ent.Benefits = append(ent.Benefits, payroll.BenefitDeduction(b.BenefitTypeID, b.BenefitTypeName, amount))
		ent.TotalBenefits = ent.TotalBenefits.Add(amount)
	}

	for _, l := range loans {
		if l.Status != loan.StatusActive {
			continue
		}
		amount := l.MonthlyAmortization.Mul(fraction).Round(2)
		ent.LoanInstallments = append(ent.LoanInstallments, LoanInstallment{Loan: l, Amount: amount})
		ent.TotalLoanInstallments = ent.TotalLoanInstallments.Add(amount)
	}

	return ent
}

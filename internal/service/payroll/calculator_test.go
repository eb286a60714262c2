package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculator_ResolveRates(t *testing.T) {
	calc := NewCalculator(decimal.Zero, decimal.Zero)

	tests := []struct {
		name      string
		in        RateInput
		hourly    string
		nightDay  string
		nightPay  string
		overtime  string
		basic     string
		grossBase string
	}{
		{
			name:      "daily rate only",
			in:        RateInput{DailyRate: dec("1000"), DaysWorked: dec("22")},
			hourly:    "125",
			nightDay:  "0",
			nightPay:  "0",
			overtime:  "0",
			basic:     "22000",
			grossBase: "22000",
		},
		{
			name: "overtime and night differential",
			in: RateInput{
				DailyRate:     dec("1000"),
				DaysWorked:    dec("22"),
				OvertimeHours: dec("4"),
				NightHours:    dec("2"),
				NightRate:     dec("10"),
			},
			hourly:    "125",
			nightDay:  "25",
			nightPay:  "550",
			overtime:  "625",
			basic:     "22000",
			grossBase: "22625",
		},
		{
			name: "fractional rates round to centavos",
			in: RateInput{
				DailyRate:     dec("537.50"),
				DaysWorked:    dec("10.5"),
				OvertimeHours: dec("3"),
				NightHours:    dec("1"),
				NightRate:     dec("10"),
			},
			hourly:    "67.19",
			nightDay:  "6.72",
			nightPay:  "70.55",
			overtime:  "251.95",
			basic:     "5643.75",
			grossBase: "5895.7",
		},
		{
			name:      "zero days worked",
			in:        RateInput{DailyRate: dec("800"), OvertimeHours: dec("2")},
			hourly:    "100",
			nightDay:  "0",
			nightPay:  "0",
			overtime:  "250",
			basic:     "0",
			grossBase: "250",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ResolveRates(tt.in)
			assert.True(t, got.HourlyRate.Equal(dec(tt.hourly)), "hourly %s", got.HourlyRate)
			assert.True(t, got.NightDiffPerDay.Equal(dec(tt.nightDay)), "night per day %s", got.NightDiffPerDay)
			assert.True(t, got.NightDiffPay.Equal(dec(tt.nightPay)), "night pay %s", got.NightDiffPay)
			assert.True(t, got.OvertimePay.Equal(dec(tt.overtime)), "overtime %s", got.OvertimePay)
			assert.True(t, got.BasicPay.Equal(dec(tt.basic)), "basic %s", got.BasicPay)
			assert.True(t, got.GrossBase.Equal(dec(tt.grossBase)), "gross base %s", got.GrossBase)
			assert.True(t, got.GrossBase.Equal(got.BasicPay.Add(got.OvertimePay)))
		})
	}
}

func TestCalculator_CustomHoursAndMultiplier(t *testing.T) {
	calc := NewCalculator(dec("10"), dec("1.5"))

	got := calc.ResolveRates(RateInput{DailyRate: dec("1000"), DaysWorked: dec("1"), OvertimeHours: dec("2")})

	assert.True(t, got.HourlyRate.Equal(dec("100")))
	assert.True(t, got.OvertimePay.Equal(dec("300")))
}

func TestCalculator_AggregateEntitlements_LinesMatchTotals(t *testing.T) {
	calc := NewCalculator(decimal.Zero, decimal.Zero)

	allowances := []employee.AllowanceGrant{
		{AllowanceTypeID: "a1", AllowanceTypeName: "Rice", Amount: dec("2000")},
		{AllowanceTypeID: "a2", AllowanceTypeName: "Transport", Amount: dec("1500.55")},
	}
	benefits := []employee.BenefitGrant{
		{BenefitTypeID: "b1", BenefitTypeName: "SSS", Amount: dec("581.30")},
		{BenefitTypeID: "b2", BenefitTypeName: "PhilHealth", Amount: dec("450")},
	}
	loans := []loan.Loan{
		{ID: "l1", Status: loan.StatusActive, MonthlyAmortization: dec("1000"), BalanceAmount: dec("5000")},
		{ID: "l2", Status: loan.StatusPending, MonthlyAmortization: dec("700"), BalanceAmount: dec("7000")},
	}

	ent := calc.AggregateEntitlements(payroll.PeriodTypeSemiMonthly, allowances, benefits, loans)

	if assert.Len(t, ent.Allowances, 2) {
		assert.True(t, ent.Allowances[0].Amount.Equal(dec("1000")))
		assert.Equal(t, "Rice", ent.Allowances[0].Name)
		assert.True(t, ent.Allowances[1].Amount.Equal(dec("750.28")))
	}
	assert.True(t, ent.TotalAllowances.Equal(dec("1750.28")))

	if assert.Len(t, ent.Benefits, 2) {
		assert.Equal(t, payroll.DeductionKindBenefit, ent.Benefits[0].Kind)
		assert.Equal(t, "SSS", ent.Benefits[0].Label())
		assert.True(t, ent.Benefits[0].Amount.Equal(dec("290.65")))
		assert.True(t, ent.Benefits[1].Amount.Equal(dec("225")))
	}
	assert.True(t, ent.TotalBenefits.Equal(dec("515.65")))

	if assert.Len(t, ent.LoanInstallments, 1, "only active loans are amortized") {
		assert.Equal(t, "l1", ent.LoanInstallments[0].Loan.ID)
		assert.True(t, ent.LoanInstallments[0].Amount.Equal(dec("500")))
	}
	assert.True(t, ent.TotalLoanInstallments.Equal(dec("500")))
}

func TestCalculator_AggregateEntitlements_PeriodFractions(t *testing.T) {
	calc := NewCalculator(decimal.Zero, decimal.Zero)
	allowances := []employee.AllowanceGrant{{AllowanceTypeID: "a1", AllowanceTypeName: "Rice", Amount: dec("2600")}}

	tests := []struct {
		periodType payroll.PeriodType
		want       string
	}{
		{payroll.PeriodTypeMonthly, "2600"},
		{payroll.PeriodTypeSemiMonthly, "1300"},
		{payroll.PeriodTypeWeekly, "600"},
	}

	for _, tt := range tests {
		t.Run(string(tt.periodType), func(t *testing.T) {
			ent := calc.AggregateEntitlements(tt.periodType, allowances, nil, nil)
			assert.True(t, ent.TotalAllowances.Equal(dec(tt.want)), "got %s", ent.TotalAllowances)
		})
	}
}

func TestCalculator_AggregateEntitlements_Empty(t *testing.T) {
	calc := NewCalculator(decimal.Zero, decimal.Zero)

	ent := calc.AggregateEntitlements(payroll.PeriodTypeSemiMonthly, nil, nil, nil)

	assert.Empty(t, ent.Allowances)
	assert.Empty(t, ent.Benefits)
	assert.Empty(t, ent.LoanInstallments)
	assert.True(t, ent.TotalAllowances.IsZero())
	assert.True(t, ent.TotalBenefits.IsZero())
	assert.True(t, ent.TotalLoanInstallments.IsZero())
}

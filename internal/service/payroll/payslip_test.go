package payroll

import (
	"bytes"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayslipInputs() (payroll.PayrollRecord, payroll.PayrollPeriod, []payroll.PayrollAllowance, []payroll.Deduction) {
	name, code := "Juan Dela Cruz", "EMP-001"
	rec := payroll.PayrollRecord{
		ID:                     "rec-1",
		PayrollPeriodID:        "period-1",
		EmployeeID:             "emp-1",
		EmployeeName:           &name,
		EmployeeCode:           &code,
		DailyRate:              dec("1000"),
		HourlyRate:             dec("125"),
		DaysWorked:             dec("22"),
		OvertimeHours:          dec("2"),
		Absences:               dec("1"),
		OvertimePay:            dec("312.50"),
		NightDiffPay:           dec("0"),
		GrossBase:              dec("22312.50"),
		TotalAllowances:        dec("1000"),
		GrossPay:               dec("23312.50"),
		TotalBenefitDeductions: dec("400"),
		TotalLoanDeductions:    dec("500"),
		TotalDeductions:        dec("900"),
		NetPay:                 dec("22412.50"),
	}
	period := payroll.PayrollPeriod{
		ID:          "period-1",
		Name:        "January 2025",
		PayDate:     time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		CutoffStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CutoffEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		PeriodType:  payroll.PeriodTypeSemiMonthly,
	}
	allowances := []payroll.PayrollAllowance{{Name: "Rice", Amount: dec("1000")}}
	deductions := []payroll.Deduction{
		payroll.LoanDeduction("loan-1", dec("500")),
		payroll.BenefitDeduction("bt-1", "SSS", dec("300")),
		payroll.OtherDeduction("", dec("100")),
	}
	return rec, period, allowances, deductions
}

func TestAssemblePayslip(t *testing.T) {
	rec, period, allowances, deductions := samplePayslipInputs()

	slip := AssemblePayslip(rec, period, allowances, deductions, nil)

	assert.Equal(t, "rec-1", slip.RecordID)
	assert.Equal(t, "", slip.Currency)
	assert.Equal(t, "Juan Dela Cruz", *slip.Employee.Name)
	assert.Equal(t, "2025-01-31", slip.Period.PayDate)
	assert.Equal(t, "semi_monthly", slip.Period.PeriodType)
	assert.Equal(t, "22,000.00", slip.BasicPay)
	assert.Equal(t, "312.50", slip.OvertimePay)
	assert.Equal(t, "23,312.50", slip.GrossPay)
	assert.Equal(t, "22,412.50", slip.NetPay)
	assert.Equal(t, "22.00", slip.DaysWorked)

	require.Len(t, slip.Deductions, 3)
	assert.Equal(t, "Loan Payment", slip.Deductions[0].Label)
	assert.Equal(t, "loan", slip.Deductions[0].Kind)
	assert.Equal(t, "SSS", slip.Deductions[1].Label)
	assert.Equal(t, "Deduction", slip.Deductions[2].Label)
	assert.Equal(t, "100.00", slip.Deductions[2].Amount)
}

func TestRenderPayslipPDF(t *testing.T) {
	rec, period, allowances, deductions := samplePayslipInputs()
	slip := AssemblePayslip(rec, period, allowances, deductions, nil)

	out, err := RenderPayslipPDF(slip, "Acme Corp")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 500)

	empty, err := RenderPayslipPDF(AssemblePayslip(payroll.PayrollRecord{}, payroll.PayrollPeriod{}, nil, nil, nil), "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}

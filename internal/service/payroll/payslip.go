package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// AssemblePayslip renders a stored record for display. Amounts come from the
// record as persisted; nothing is recomputed.
func AssemblePayslip(
	rec payroll.PayrollRecord,
	period payroll.PayrollPeriod,
	allowances []payroll.PayrollAllowance,
	deductions []payroll.Deduction,
	f *money.Formatter,
) payroll.PayslipResponse {
	if f == nil {
		f = money.Default()
	}

	slip := payroll.PayslipResponse{
		RecordID: rec.ID,
		Currency: f.Currency(),
		Employee: payroll.PayslipEmployee{
			ID:         rec.EmployeeID,
			Code:       rec.EmployeeCode,
			Name:       rec.EmployeeName,
			Department: rec.DepartmentName,
			Position:   rec.PositionName,
		},
		Period: payroll.PayslipPeriod{
			ID:          period.ID,
			Name:        period.Name,
			PayDate:     period.PayDate.Format(validator.DateLayout),
			CutoffStart: period.CutoffStart.Format(validator.DateLayout),
			CutoffEnd:   period.CutoffEnd.Format(validator.DateLayout),
			PeriodType:  string(period.PeriodType),
		},
		DailyRate:              f.Format(rec.DailyRate),
		HourlyRate:             f.Format(rec.HourlyRate),
		DaysWorked:             rec.DaysWorked.StringFixed(2),
		OvertimeHours:          rec.OvertimeHours.StringFixed(2),
		Absences:               rec.Absences.StringFixed(2),
		BasicPay:               f.Format(rec.GrossBase.Sub(rec.OvertimePay)),
		OvertimePay:            f.Format(rec.OvertimePay),
		GrossBase:              f.Format(rec.GrossBase),
		NightDiffPay:           f.Format(rec.NightDiffPay),
		Allowances:             make([]payroll.PayslipLine, 0, len(allowances)),
		TotalAllowances:        f.Format(rec.TotalAllowances),
		GrossPay:               f.Format(rec.GrossPay),
		Deductions:             make([]payroll.PayslipLine, 0, len(deductions)),
		TotalBenefitDeductions: f.Format(rec.TotalBenefitDeductions),
		TotalLoanDeductions:    f.Format(rec.TotalLoanDeductions),
		TotalDeductions:        f.Format(rec.TotalDeductions),
		NetPay:                 f.Format(rec.NetPay),
	}

	for _, a := range allowances {
		slip.Allowances = append(slip.Allowances, payroll.PayslipLine{
			Label:  a.Name,
			Amount: f.Format(a.Amount),
		})
	}
	for _, d := range deductions {
		slip.Deductions = append(slip.Deductions, payroll.PayslipLine{
			Kind:   string(d.Kind),
			Label:  d.Label(),
			Amount: f.Format(d.Amount),
		})
	}

	return slip
}

func toPeriodResponse(p payroll.PayrollPeriod) payroll.PayrollPeriodResponse {
	return payroll.PayrollPeriodResponse{
		ID:          p.ID,
		Name:        p.Name,
		PayDate:     p.PayDate.Format(validator.DateLayout),
		CutoffStart: p.CutoffStart.Format(validator.DateLayout),
		CutoffEnd:   p.CutoffEnd.Format(validator.DateLayout),
		PeriodType:  string(p.PeriodType),
		Status:      string(p.Status),
		IsArchived:  p.IsArchived,
		RecordCount: p.RecordCount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	resp := payroll.PayrollRecordResponse{
		ID:                     r.ID,
		PayrollPeriodID:        r.PayrollPeriodID,
		PeriodName:             r.PeriodName,
		EmployeeID:             r.EmployeeID,
		EmployeeName:           r.EmployeeName,
		EmployeeCode:           r.EmployeeCode,
		DepartmentName:         r.DepartmentName,
		PositionName:           r.PositionName,
		DailyRate:              r.DailyRate,
		HourlyRate:             r.HourlyRate,
		DaysWorked:             r.DaysWorked,
		OvertimeHours:          r.OvertimeHours,
		Absences:               r.Absences,
		OvertimePay:            r.OvertimePay,
		NightDiffPay:           r.NightDiffPay,
		GrossBase:              r.GrossBase,
		TotalAllowances:        r.TotalAllowances,
		GrossPay:               r.GrossPay,
		TotalBenefitDeductions: r.TotalBenefitDeductions,
		TotalLoanDeductions:    r.TotalLoanDeductions,
		TotalDeductions:        r.TotalDeductions,
		NetPay:                 r.NetPay,
		IsArchived:             r.IsArchived,
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
	}
	if r.PayDate != nil {
		payDate := r.PayDate.Format(validator.DateLayout)
		resp.PayDate = &payDate
	}
	return resp
}

func toThirteenthMonthResponse(tm payroll.ThirteenthMonth) payroll.ThirteenthMonthResponse {
	return payroll.ThirteenthMonthResponse{
		ID:           tm.ID,
		EmployeeID:   tm.EmployeeID,
		EmployeeName: tm.EmployeeName,
		EmployeeCode: tm.EmployeeCode,
		StartDate:    tm.StartDate.Format(validator.DateLayout),
		EndDate:      tm.EndDate.Format(validator.DateLayout),
		TotalBasic:   tm.TotalBasic,
		Amount:       tm.Amount,
		GeneratedAt:  tm.GeneratedAt.Format(time.RFC3339),
	}
}

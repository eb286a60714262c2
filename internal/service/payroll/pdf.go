package payroll

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

// RenderPayslipPDF lays out an assembled payslip on a single A4 page.
func RenderPayslipPDF(slip payroll.PayslipResponse, companyName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Payslip "+slip.Period.Name, true)
	pdf.SetCreator(companyName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(companyName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Payslip", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	info := [][2]string{
		{"Employee", deref(slip.Employee.Name)},
		{"Employee Code", deref(slip.Employee.Code)},
		{"Department", deref(slip.Employee.Department)},
		{"Position", deref(slip.Employee.Position)},
		{"Period", slip.Period.Name},
		{"Cutoff", fmt.Sprintf("%s to %s", slip.Period.CutoffStart, slip.Period.CutoffEnd)},
		{"Pay Date", slip.Period.PayDate},
	}
	for _, row := range info {
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 7, title, "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	line := func(label, amount string) {
		pdf.CellFormat(130, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, amount, "", 1, "R", false, 0, "")
	}
	total := func(label, amount string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(130, 7, label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, amount, "T", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	section("Earnings")
	line(fmt.Sprintf("Basic Pay (%s days x %s)", slip.DaysWorked, slip.DailyRate), slip.BasicPay)
	line(fmt.Sprintf("Overtime (%s hrs)", slip.OvertimeHours), slip.OvertimePay)
	line("Night Differential", slip.NightDiffPay)
	for _, a := range slip.Allowances {
		line(a.Label, a.Amount)
	}
	total("Gross Pay", slip.GrossPay)
	pdf.Ln(3)

	section("Deductions")
	if len(slip.Deductions) == 0 {
		line("None", "0.00")
	}
	for _, d := range slip.Deductions {
		line(d.Label, d.Amount)
	}
	total("Total Deductions", slip.TotalDeductions)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	netLabel := "Net Pay"
	if slip.Currency != "" {
		netLabel += " (" + slip.Currency + ")"
	}
	pdf.CellFormat(130, 9, netLabel, "TB", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, slip.NetPay, "TB", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

package payroll

import "context"

type PayrollService interface {
	// Periods
	CreatePayrollPeriod(ctx context.Context, req CreatePayrollPeriodRequest) (CreatePayrollPeriodResponse, error)
	UpdatePayrollPeriod(ctx context.Context, req UpdatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	ArchivePayrollPeriod(ctx context.Context, req ArchivePayrollPeriodRequest) (PayrollPeriodResponse, error)
	ListPayrollPeriods(ctx context.Context, filter PeriodFilter) (ListPayrollPeriodResponse, error)
	ListMyPayrollPeriods(ctx context.Context, filter PeriodFilter) (ListPayrollPeriodResponse, error)
	GetPayrollDetails(ctx context.Context, periodID string, filter RecordFilter) (PayrollDetailsResponse, error)
	GetPeriodSummary(ctx context.Context, periodID string) (PeriodSummaryResponse, error)

	// Payslips
	GetPayslip(ctx context.Context, recordID string) (PayslipResponse, error)
	GetPayslipPDF(ctx context.Context, recordID string) ([]byte, error)
	GetMyPayrollRecords(ctx context.Context, filter RecordFilter) (ListPayrollRecordResponse, error)
	GetMyPayslips(ctx context.Context, filter RecordFilter) (ListPayslipResponse, error)
	GetMyPayslip(ctx context.Context, recordID string) (PayslipResponse, error)

	// 13th month
	GenerateThirteenthMonth(ctx context.Context, req GenerateThirteenthMonthRequest) ([]ThirteenthMonthResponse, error)
	ListThirteenthMonth(ctx context.Context, filter ThirteenthMonthFilter) (ListThirteenthMonthResponse, error)
}

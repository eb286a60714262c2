package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriodByID(ctx context.Context, id string) (PayrollPeriod, error)
	GetPeriodByIdempotencyKey(ctx context.Context, key string) (PayrollPeriod, error)
	UpdatePeriod(ctx context.Context, req UpdatePayrollPeriodRequest) error
	UpdatePeriodStatus(ctx context.Context, id string, status PeriodStatus) error
	SetPeriodArchived(ctx context.Context, id string, archived bool) error
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PayrollPeriod, int64, error)

	// Records
	LockEmployee(ctx context.Context, employeeID string) error
	HasOverlappingRecord(ctx context.Context, employeeID string, cutoffStart, cutoffEnd time.Time) (bool, error)
	HasOverlapWithLiveRecords(ctx context.Context, periodID string) (bool, error)
	CreateRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	CreateAllowances(ctx context.Context, lines []PayrollAllowance) error
	CreateDeductions(ctx context.Context, lines []Deduction) error
	SetRecordsArchivedByPeriod(ctx context.Context, periodID string, archived bool) error
	GetRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	GetAllowancesByRecordID(ctx context.Context, recordID string) ([]PayrollAllowance, error)
	GetDeductionsByRecordID(ctx context.Context, recordID string) ([]Deduction, error)
	ListRecordsByPeriod(ctx context.Context, periodID string, filter RecordFilter) ([]PayrollRecord, error)
	CountRecordsByPeriod(ctx context.Context, periodID string, filter RecordFilter) (int64, error)
	ListRecordsByEmployee(ctx context.Context, employeeID string, filter RecordFilter) ([]PayrollRecord, int64, error)
	GetPeriodSummary(ctx context.Context, periodID string) (PeriodSummary, error)

	// 13th month
	SumGrossBase(ctx context.Context, employeeID string, start, end time.Time) (decimal.Decimal, error)
	UpsertThirteenthMonth(ctx context.Context, tm ThirteenthMonth) (ThirteenthMonth, error)
	ListThirteenthMonth(ctx context.Context, filter ThirteenthMonthFilter) ([]ThirteenthMonth, int64, error)
}

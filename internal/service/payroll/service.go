package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var twelve = decimal.NewFromInt(12)

// Options carries payroll defaults taken from configuration.
type Options struct {
	DefaultPeriodType payroll.PeriodType
	CompanyName       string
}

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	loanRepo     loan.LoanRepository
	calc         *Calculator
	formatter    *money.Formatter
	opts         Options
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	loanRepo loan.LoanRepository,
	calc *Calculator,
	formatter *money.Formatter,
	opts Options,
) payroll.PayrollService {
	if calc == nil {
		calc = NewCalculator(DefaultHoursPerDay, DefaultOvertimeMultiplier)
	}
	if formatter == nil {
		formatter = money.Default()
	}
	if !opts.DefaultPeriodType.IsValid() {
		opts.DefaultPeriodType = payroll.PeriodTypeSemiMonthly
	}
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		loanRepo:     loanRepo,
		calc:         calc,
		formatter:    formatter,
		opts:         opts,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func pageParams(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func mustDate(s string) time.Time {
	t, _ := time.Parse(validator.DateLayout, s)
	return t
}

// ========== PERIODS ==========

// CreatePayrollPeriod runs payroll for every employee in the request inside a
// single transaction. Any failure rolls back the period, all records and all
// loan balance changes made by the run.
func (s *PayrollServiceImpl) CreatePayrollPeriod(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.CreatePayrollPeriodResponse, error) {
	if req.PeriodType == "" {
		req.PeriodType = string(s.opts.DefaultPeriodType)
	}
	if req.IdempotencyKey != nil {
		key := strings.TrimSpace(*req.IdempotencyKey)
		req.IdempotencyKey = &key
	}
	if err := req.Validate(); err != nil {
		return payroll.CreatePayrollPeriodResponse{}, err
	}

	period := payroll.PayrollPeriod{
		ID:             newID(),
		Name:           strings.TrimSpace(req.PeriodName),
		PayDate:        mustDate(req.PayDate),
		CutoffStart:    mustDate(req.CutoffStart),
		CutoffEnd:      mustDate(req.CutoffEnd),
		PeriodType:     payroll.PeriodType(req.PeriodType),
		Status:         payroll.PeriodStatusDraft,
		IdempotencyKey: req.IdempotencyKey,
	}
	if id, err := user.IdentityFromContext(ctx); err == nil && validator.IsValidUUID(id.UserID) {
		period.CreatedBy = &id.UserID
	}

	var resp payroll.CreatePayrollPeriodResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if period.IdempotencyKey != nil {
			existing, err := s.payrollRepo.GetPeriodByIdempotencyKey(ctx, *period.IdempotencyKey)
			if err == nil {
				resp = payroll.CreatePayrollPeriodResponse{
					Period:         toPeriodResponse(existing),
					RecordsCreated: existing.RecordCount,
					Replayed:       true,
				}
				return nil
			}
			if !errors.Is(err, payroll.ErrPeriodNotFound) {
				return err
			}
		}

		created, err := s.payrollRepo.CreatePeriod(ctx, period)
		if err != nil {
			return err
		}

		for i, in := range req.Employees {
			if err := s.processEmployee(ctx, created, in); err != nil {
				return &payroll.EmployeeRunError{EmployeeID: in.EmployeeID, Index: i, Err: err}
			}
		}

		if err := s.payrollRepo.UpdatePeriodStatus(ctx, created.ID, payroll.PeriodStatusProcessed); err != nil {
			return err
		}
		created.Status = payroll.PeriodStatusProcessed
		created.RecordCount = len(req.Employees)

		resp = payroll.CreatePayrollPeriodResponse{
			Period:         toPeriodResponse(created),
			RecordsCreated: len(req.Employees),
		}
		return nil
	})
	if err != nil {
		attrs := []any{"period_name", period.Name, "error", err}
		var runErr *payroll.EmployeeRunError
		if errors.As(err, &runErr) {
			attrs = append(attrs, "employee_id", runErr.EmployeeID, "index", runErr.Index)
		}
		slog.ErrorContext(ctx, "payroll run rolled back", attrs...)
		return payroll.CreatePayrollPeriodResponse{}, err
	}

	if resp.Replayed {
		slog.InfoContext(ctx, "payroll run replayed", "period_id", resp.Period.ID, "idempotency_key", *period.IdempotencyKey)
	} else {
		slog.InfoContext(ctx, "payroll run processed", "period_id", resp.Period.ID, "records", resp.RecordsCreated)
	}
	return resp, nil
}

// processEmployee computes and stores one employee's record. It must run
// inside the payroll run transaction.
func (s *PayrollServiceImpl) processEmployee(ctx context.Context, period payroll.PayrollPeriod, in payroll.EmployeeInput) error {
	emp, err := s.employeeRepo.GetByID(ctx, in.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.ErrEmployeeNotFound
		}
		return err
	}

	if err := s.payrollRepo.LockEmployee(ctx, emp.ID); err != nil {
		return err
	}

	overlapping, err := s.payrollRepo.HasOverlappingRecord(ctx, emp.ID, period.CutoffStart, period.CutoffEnd)
	if err != nil {
		return err
	}
	if overlapping {
		return payroll.ErrOverlappingRecord
	}

	allowances, err := s.employeeRepo.GetAllowanceGrants(ctx, emp.ID)
	if err != nil {
		return err
	}
	benefits, err := s.employeeRepo.GetBenefitGrants(ctx, emp.ID)
	if err != nil {
		return err
	}
	loans, err := s.loanRepo.GetActiveByEmployeeForUpdate(ctx, emp.ID)
	if err != nil {
		return err
	}

	rates := s.calc.ResolveRates(RateInput{
		DailyRate:     emp.BaseSalary,
		DaysWorked:    in.DaysWorked,
		OvertimeHours: in.OvertimeHours,
		NightHours:    emp.NightHours,
		NightRate:     emp.NightRate,
	})
	ent := s.calc.AggregateEntitlements(period.PeriodType, allowances, benefits, loans)

	recordID := newID()
	deductions := make([]payroll.Deduction, 0, len(ent.Benefits)+len(ent.LoanInstallments))
	for _, d := range ent.Benefits {
		d.ID = newID()
		d.PayrollRecordID = recordID
		deductions = append(deductions, d)
	}

	// The full installment is deducted from pay; only the balance is clamped.
	for _, inst := range ent.LoanInstallments {
		l := inst.Loan
		if _, changed := l.ApplyInstallment(inst.Amount); changed {
			if err := s.loanRepo.UpdateBalance(ctx, l.ID, l.BalanceAmount, l.Status); err != nil {
				return err
			}
			if l.Status == loan.StatusPaid {
				slog.InfoContext(ctx, "loan fully paid", "loan_id", l.ID, "employee_id", emp.ID, "period_id", period.ID)
			}
		}

		d := payroll.LoanDeduction(l.ID, inst.Amount)
		d.ID = newID()
		d.PayrollRecordID = recordID
		deductions = append(deductions, d)
	}

	grossPay := rates.GrossBase.Add(ent.TotalAllowances).Add(rates.NightDiffPay)
	totalDeductions := ent.TotalBenefits.Add(ent.TotalLoanInstallments)

	rec := payroll.PayrollRecord{
		ID:                     recordID,
		PayrollPeriodID:        period.ID,
		EmployeeID:             emp.ID,
		DailyRate:              emp.BaseSalary,
		HourlyRate:             rates.HourlyRate,
		DaysWorked:             in.DaysWorked,
		OvertimeHours:          in.OvertimeHours,
		Absences:               in.Absences,
		OvertimePay:            rates.OvertimePay,
		NightDiffPay:           rates.NightDiffPay,
		GrossBase:              rates.GrossBase,
		TotalAllowances:        ent.TotalAllowances,
		GrossPay:               grossPay,
		TotalBenefitDeductions: ent.TotalBenefits,
		TotalLoanDeductions:    ent.TotalLoanInstallments,
		TotalDeductions:        totalDeductions,
		NetPay:                 grossPay.Sub(totalDeductions),
	}
	if _, err := s.payrollRepo.CreateRecord(ctx, rec); err != nil {
		return err
	}

	lines := make([]payroll.PayrollAllowance, 0, len(ent.Allowances))
	for _, a := range ent.Allowances {
		a.ID = newID()
		a.PayrollRecordID = recordID
		lines = append(lines, a)
	}
	if err := s.payrollRepo.CreateAllowances(ctx, lines); err != nil {
		return err
	}
	return s.payrollRepo.CreateDeductions(ctx, deductions)
}

// UpdatePayrollPeriod changes the display fields of a period. Cutoff dates and
// period type are fixed once records exist.
func (s *PayrollServiceImpl) UpdatePayrollPeriod(ctx context.Context, req payroll.UpdatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	current, err := s.payrollRepo.GetPeriodByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	if current.IsArchived {
		return payroll.PayrollPeriodResponse{}, payroll.ErrPeriodArchived
	}

	if err := s.payrollRepo.UpdatePeriod(ctx, req); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	updated, err := s.payrollRepo.GetPeriodByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	return toPeriodResponse(updated), nil
}

// ArchivePayrollPeriod flips the archive flag of a period and all of its
// records together. Restoring is refused when a record would overlap a newer
// live run for the same employee.
func (s *PayrollServiceImpl) ArchivePayrollPeriod(ctx context.Context, req payroll.ArchivePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
	var period payroll.PayrollPeriod
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.payrollRepo.GetPeriodByID(ctx, req.ID)
		if err != nil {
			return err
		}

		if !req.IsArchived && current.IsArchived {
			overlapping, err := s.payrollRepo.HasOverlapWithLiveRecords(ctx, req.ID)
			if err != nil {
				return err
			}
			if overlapping {
				return payroll.ErrOverlappingRecord
			}
		}

		if err := s.payrollRepo.SetPeriodArchived(ctx, req.ID, req.IsArchived); err != nil {
			return err
		}
		if err := s.payrollRepo.SetRecordsArchivedByPeriod(ctx, req.ID, req.IsArchived); err != nil {
			return err
		}

		current.IsArchived = req.IsArchived
		period = current
		return nil
	})
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	slog.InfoContext(ctx, "payroll period archive flag changed", "period_id", period.ID, "archived", period.IsArchived)
	return toPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPayrollPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPayrollPeriodResponse, error) {
	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)

	periods, total, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return payroll.ListPayrollPeriodResponse{}, err
	}

	data := make([]payroll.PayrollPeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, toPeriodResponse(p))
	}

	return payroll.ListPayrollPeriodResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ListMyPayrollPeriods lists the non-archived periods that hold a record for
// the caller's employee.
func (s *PayrollServiceImpl) ListMyPayrollPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPayrollPeriodResponse, error) {
	employeeID, err := user.CurrentEmployeeID(ctx)
	if err != nil {
		return payroll.ListPayrollPeriodResponse{}, err
	}

	archived := false
	filter.Archived = &archived
	filter.EmployeeID = &employeeID
	return s.ListPayrollPeriods(ctx, filter)
}

// GetPayrollDetails pages through the records of a period. An archived
// period always lists its own archived records.
func (s *PayrollServiceImpl) GetPayrollDetails(ctx context.Context, periodID string, filter payroll.RecordFilter) (payroll.PayrollDetailsResponse, error) {
	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)

	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.PayrollDetailsResponse{}, err
	}
	if period.IsArchived {
		filter.IncludeArchived = true
	}

	var (
		total   int64
		records []payroll.PayrollRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.payrollRepo.CountRecordsByPeriod(gCtx, periodID, filter)
		if err != nil {
			return err
		}
		total = n
		return nil
	})

	g.Go(func() error {
		rs, err := s.payrollRepo.ListRecordsByPeriod(gCtx, periodID, filter)
		if err != nil {
			return err
		}
		records = rs
		return nil
	})

	if err := g.Wait(); err != nil {
		return payroll.PayrollDetailsResponse{}, err
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, toRecordResponse(r))
	}

	return payroll.PayrollDetailsResponse{
		Period:     toPeriodResponse(period),
		Records:    data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetPeriodSummary(ctx context.Context, periodID string) (payroll.PeriodSummaryResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	sum, err := s.payrollRepo.GetPeriodSummary(ctx, periodID)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	return payroll.PeriodSummaryResponse{
		PeriodID:               period.ID,
		PeriodName:             period.Name,
		Headcount:              sum.Headcount,
		TotalGrossBase:         sum.TotalGrossBase,
		TotalOvertimePay:       sum.TotalOvertimePay,
		TotalAllowances:        sum.TotalAllowances,
		TotalNightDiffPay:      sum.TotalNightDiffPay,
		TotalGrossPay:          sum.TotalGrossPay,
		TotalBenefitDeductions: sum.TotalBenefitDeductions,
		TotalLoanDeductions:    sum.TotalLoanDeductions,
		TotalDeductions:        sum.TotalDeductions,
		TotalNetPay:            sum.TotalNetPay,
	}, nil
}

// ========== PAYSLIPS ==========

// buildPayslip loads the period and child lines of rec concurrently and
// assembles the payslip view.
func (s *PayrollServiceImpl) buildPayslip(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayslipResponse, error) {
	var (
		period     payroll.PayrollPeriod
		allowances []payroll.PayrollAllowance
		deductions []payroll.Deduction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.payrollRepo.GetPeriodByID(gCtx, rec.PayrollPeriodID)
		if err != nil {
			return err
		}
		period = p
		return nil
	})

	g.Go(func() error {
		lines, err := s.payrollRepo.GetAllowancesByRecordID(gCtx, rec.ID)
		if err != nil {
			return err
		}
		allowances = lines
		return nil
	})

	g.Go(func() error {
		lines, err := s.payrollRepo.GetDeductionsByRecordID(gCtx, rec.ID)
		if err != nil {
			return err
		}
		deductions = lines
		return nil
	})

	if err := g.Wait(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	return AssemblePayslip(rec, period, allowances, deductions, s.formatter), nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, recordID string) (payroll.PayslipResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, recordID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return s.buildPayslip(ctx, rec)
}

func (s *PayrollServiceImpl) GetPayslipPDF(ctx context.Context, recordID string) ([]byte, error) {
	slip, err := s.GetPayslip(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return RenderPayslipPDF(slip, s.opts.CompanyName)
}

func (s *PayrollServiceImpl) GetMyPayrollRecords(ctx context.Context, filter payroll.RecordFilter) (payroll.ListPayrollRecordResponse, error) {
	employeeID, err := user.CurrentEmployeeID(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)
	filter.IncludeArchived = false

	records, total, err := s.payrollRepo.ListRecordsByEmployee(ctx, employeeID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, toRecordResponse(r))
	}

	return payroll.ListPayrollRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetMyPayslips(ctx context.Context, filter payroll.RecordFilter) (payroll.ListPayslipResponse, error) {
	employeeID, err := user.CurrentEmployeeID(ctx)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)
	filter.IncludeArchived = false

	records, total, err := s.payrollRepo.ListRecordsByEmployee(ctx, employeeID, filter)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	data := make([]payroll.PayslipResponse, 0, len(records))
	for _, r := range records {
		slip, err := s.buildPayslip(ctx, r)
		if err != nil {
			return payroll.ListPayslipResponse{}, err
		}
		data = append(data, slip)
	}

	return payroll.ListPayslipResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetMyPayslip returns one of the caller's own payslips. Records that belong
// to someone else or are archived read as not found.
func (s *PayrollServiceImpl) GetMyPayslip(ctx context.Context, recordID string) (payroll.PayslipResponse, error) {
	employeeID, err := user.CurrentEmployeeID(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	rec, err := s.payrollRepo.GetRecordByID(ctx, recordID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if rec.EmployeeID != employeeID || rec.IsArchived {
		return payroll.PayslipResponse{}, payroll.ErrRecordNotFound
	}
	return s.buildPayslip(ctx, rec)
}

// ========== 13TH MONTH ==========

// GenerateThirteenthMonth computes total gross base / 12 per employee over the
// range and upserts it, so regenerating a range replaces the earlier figure.
func (s *PayrollServiceImpl) GenerateThirteenthMonth(ctx context.Context, req payroll.GenerateThirteenthMonthRequest) ([]payroll.ThirteenthMonthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := mustDate(req.StartDate)
	end := mustDate(req.EndDate)

	results := make([]payroll.ThirteenthMonthResponse, 0, len(req.EmployeeIDs))
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, employeeID := range req.EmployeeIDs {
			tm, err := s.generateThirteenthMonth(ctx, employeeID, start, end)
			if err != nil {
				return &payroll.EmployeeRunError{EmployeeID: employeeID, Index: i, Err: err}
			}
			results = append(results, toThirteenthMonthResponse(tm))
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "13th month generation rolled back", "start_date", req.StartDate, "end_date", req.EndDate, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "13th month pay generated", "employees", len(results), "start_date", req.StartDate, "end_date", req.EndDate)
	return results, nil
}

func (s *PayrollServiceImpl) generateThirteenthMonth(ctx context.Context, employeeID string, start, end time.Time) (payroll.ThirteenthMonth, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.ThirteenthMonth{}, payroll.ErrEmployeeNotFound
		}
		return payroll.ThirteenthMonth{}, err
	}

	total, err := s.payrollRepo.SumGrossBase(ctx, emp.ID, start, end)
	if err != nil {
		return payroll.ThirteenthMonth{}, err
	}

	tm, err := s.payrollRepo.UpsertThirteenthMonth(ctx, payroll.ThirteenthMonth{
		ID:         newID(),
		EmployeeID: emp.ID,
		StartDate:  start,
		EndDate:    end,
		TotalBasic: total,
		Amount:     total.Div(twelve).Round(2),
	})
	if err != nil {
		return payroll.ThirteenthMonth{}, fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	name, code := emp.FullName, emp.EmployeeCode
	tm.EmployeeName = &name
	tm.EmployeeCode = &code
	return tm, nil
}

func (s *PayrollServiceImpl) ListThirteenthMonth(ctx context.Context, filter payroll.ThirteenthMonthFilter) (payroll.ListThirteenthMonthResponse, error) {
	if filter.EmployeeID != nil && !validator.IsValidUUID(*filter.EmployeeID) {
		return payroll.ListThirteenthMonthResponse{}, validator.ValidationErrors{
			{Field: "employee_id", Message: "must be a valid UUID"},
		}
	}
	filter.Page, filter.Limit = pageParams(filter.Page, filter.Limit)

	items, total, err := s.payrollRepo.ListThirteenthMonth(ctx, filter)
	if err != nil {
		return payroll.ListThirteenthMonthResponse{}, err
	}

	data := make([]payroll.ThirteenthMonthResponse, 0, len(items))
	for _, tm := range items {
		data = append(data, toThirteenthMonthResponse(tm))
	}

	return payroll.ListThirteenthMonthResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

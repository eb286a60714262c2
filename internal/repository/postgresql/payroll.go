package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PERIODS ==========

const periodSelect = `
	SELECT pp.id, pp.name, pp.pay_date, pp.cutoff_start, pp.cutoff_end, pp.period_type, pp.status,
		pp.is_archived, pp.idempotency_key, pp.created_by, pp.created_at, pp.updated_at,
		(SELECT COUNT(*) FROM payroll_records pr WHERE pr.payroll_period_id = pp.id) AS record_count
	FROM payroll_periods pp
`

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.Name, &p.PayDate, &p.CutoffStart, &p.CutoffEnd, &p.PeriodType, &p.Status,
		&p.IsArchived, &p.IdempotencyKey, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.RecordCount,
	)
	return p, err
}

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (id, name, pay_date, cutoff_start, cutoff_end, period_type, status, idempotency_key, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		period.ID, period.Name, period.PayDate, period.CutoffStart, period.CutoffEnd,
		period.PeriodType, period.Status, period.IdempotencyKey, period.CreatedBy,
	).Scan(&period.CreatedAt, &period.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "payroll_periods_idempotency_key_key") {
			return payroll.PayrollPeriod{}, payroll.ErrIdempotencyKeyConflict
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}
	return period, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, periodSelect+` WHERE pp.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetPeriodByIdempotencyKey(ctx context.Context, key string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeriod(q.QueryRow(ctx, periodSelect+` WHERE pp.idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period by idempotency key: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) UpdatePeriod(ctx context.Context, req payroll.UpdatePayrollPeriodRequest) error {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID}
	argIdx := 2

	if req.PeriodName != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, strings.TrimSpace(*req.PeriodName))
		argIdx++
	}
	if req.PayDate != nil {
		setParts = append(setParts, fmt.Sprintf("pay_date = $%d", argIdx))
		args = append(args, *req.PayDate)
		argIdx++
	}

	query := fmt.Sprintf(`UPDATE payroll_periods SET %s WHERE id = $1`, strings.Join(setParts, ", "))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollRepository) UpdatePeriodStatus(ctx context.Context, id string, status payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_periods SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payroll period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollRepository) SetPeriodArchived(ctx context.Context, id string, archived bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_periods SET is_archived = $1, updated_at = NOW() WHERE id = $2`, archived, id)
	if err != nil {
		return fmt.Errorf("failed to archive payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Archived != nil {
		where += fmt.Sprintf(" AND pp.is_archived = $%d", argIdx)
		args = append(args, *filter.Archived)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM payroll_records pr WHERE pr.payroll_period_id = pp.id AND pr.employee_id = $%d AND pr.is_archived = FALSE)", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_periods pp`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := periodSelect + where + fmt.Sprintf(" ORDER BY pp.pay_date DESC, pp.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, total, rows.Err()
}

// ========== RECORDS ==========

const recordSelect = `
	SELECT pr.id, pr.payroll_period_id, pr.employee_id, pr.daily_rate, pr.hourly_rate, pr.days_worked,
		pr.overtime_hours, pr.absences, pr.overtime_pay, pr.night_diff_pay, pr.gross_base,
		pr.total_allowances, pr.gross_pay, pr.total_benefit_deductions, pr.total_loan_deductions,
		pr.total_deductions, pr.net_pay, pr.is_archived, pr.created_at,
		e.full_name, e.employee_code, d.name, p.name, pp.name, pp.pay_date
	FROM payroll_records pr
	JOIN payroll_periods pp ON pr.payroll_period_id = pp.id
	LEFT JOIN employees e ON pr.employee_id = e.id
	LEFT JOIN departments d ON e.department_id = d.id
	LEFT JOIN positions p ON e.position_id = p.id
`

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(
		&rec.ID, &rec.PayrollPeriodID, &rec.EmployeeID, &rec.DailyRate, &rec.HourlyRate, &rec.DaysWorked,
		&rec.OvertimeHours, &rec.Absences, &rec.OvertimePay, &rec.NightDiffPay, &rec.GrossBase,
		&rec.TotalAllowances, &rec.GrossPay, &rec.TotalBenefitDeductions, &rec.TotalLoanDeductions,
		&rec.TotalDeductions, &rec.NetPay, &rec.IsArchived, &rec.CreatedAt,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.DepartmentName, &rec.PositionName, &rec.PeriodName, &rec.PayDate,
	)
	return rec, err
}

// LockEmployee takes a transaction-scoped advisory lock on the employee so
// concurrent runs serialize their overlap check and record insert.
func (r *payrollRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "payroll:"+employeeID); err != nil {
		return fmt.Errorf("failed to lock employee for payroll: %w", err)
	}
	return nil
}

// HasOverlappingRecord reports whether the employee already has a live record
// in a period whose cutoff intersects [cutoffStart, cutoffEnd].
func (r *payrollRepository) HasOverlappingRecord(ctx context.Context, employeeID string, cutoffStart, cutoffEnd time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM payroll_records pr
			JOIN payroll_periods pp ON pr.payroll_period_id = pp.id
			WHERE pr.employee_id = $1
				AND pr.is_archived = FALSE
				AND pp.cutoff_start <= $3
				AND pp.cutoff_end >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, cutoffStart, cutoffEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping payroll records: %w", err)
	}
	return exists, nil
}

// HasOverlapWithLiveRecords reports whether any employee of the period has a
// live record in another period with an intersecting cutoff.
func (r *payrollRepository) HasOverlapWithLiveRecords(ctx context.Context, periodID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM payroll_records pr
			JOIN payroll_periods pp ON pr.payroll_period_id = pp.id
			JOIN payroll_records other ON other.employee_id = pr.employee_id
				AND other.payroll_period_id <> pr.payroll_period_id
				AND other.is_archived = FALSE
			JOIN payroll_periods op ON other.payroll_period_id = op.id
			WHERE pr.payroll_period_id = $1
				AND op.cutoff_start <= pp.cutoff_end
				AND op.cutoff_end >= pp.cutoff_start
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, periodID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping payroll records: %w", err)
	}
	return exists, nil
}

func (r *payrollRepository) CreateRecord(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			id, payroll_period_id, employee_id, daily_rate, hourly_rate, days_worked, overtime_hours,
			absences, overtime_pay, night_diff_pay, gross_base, total_allowances, gross_pay,
			total_benefit_deductions, total_loan_deductions, total_deductions, net_pay
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID, rec.PayrollPeriodID, rec.EmployeeID, rec.DailyRate, rec.HourlyRate, rec.DaysWorked, rec.OvertimeHours,
		rec.Absences, rec.OvertimePay, rec.NightDiffPay, rec.GrossBase, rec.TotalAllowances, rec.GrossPay,
		rec.TotalBenefitDeductions, rec.TotalLoanDeductions, rec.TotalDeductions, rec.NetPay,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return payroll.PayrollRecord{}, payroll.ErrRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) CreateAllowances(ctx context.Context, lines []payroll.PayrollAllowance) error {
	if len(lines) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(
			`INSERT INTO payroll_allowances (id, payroll_record_id, allowance_type_id, name, amount) VALUES ($1, $2, $3, $4, $5)`,
			l.ID, l.PayrollRecordID, l.AllowanceTypeID, l.Name, l.Amount,
		)
	}
	return r.sendBatch(ctx, q, batch, "payroll allowances")
}

func (r *payrollRepository) CreateDeductions(ctx context.Context, lines []payroll.Deduction) error {
	if len(lines) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(
			`INSERT INTO payroll_deductions (id, payroll_record_id, kind, loan_id, benefit_type_id, name, amount) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.PayrollRecordID, l.Kind, l.LoanID, l.BenefitTypeID, l.Name, l.Amount,
		)
	}
	return r.sendBatch(ctx, q, batch, "payroll deductions")
}

func (r *payrollRepository) sendBatch(ctx context.Context, q database.Querier, batch *pgx.Batch, what string) error {
	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to insert %s: %w", what, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return nil
}

func (r *payrollRepository) SetRecordsArchivedByPeriod(ctx context.Context, periodID string, archived bool) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE payroll_records SET is_archived = $1 WHERE payroll_period_id = $2`, archived, periodID); err != nil {
		return fmt.Errorf("failed to archive payroll records: %w", err)
	}
	return nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, recordSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetAllowancesByRecordID(ctx context.Context, recordID string) ([]payroll.PayrollAllowance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, payroll_record_id, allowance_type_id, name, amount
		FROM payroll_allowances
		WHERE payroll_record_id = $1
		ORDER BY name
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll allowances: %w", err)
	}
	defer rows.Close()

	var lines []payroll.PayrollAllowance
	for rows.Next() {
		var l payroll.PayrollAllowance
		if err := rows.Scan(&l.ID, &l.PayrollRecordID, &l.AllowanceTypeID, &l.Name, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payroll allowance: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *payrollRepository) GetDeductionsByRecordID(ctx context.Context, recordID string) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, payroll_record_id, kind, loan_id, benefit_type_id, name, amount
		FROM payroll_deductions
		WHERE payroll_record_id = $1
		ORDER BY kind, name
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll deductions: %w", err)
	}
	defer rows.Close()

	var lines []payroll.Deduction
	for rows.Next() {
		var l payroll.Deduction
		if err := rows.Scan(&l.ID, &l.PayrollRecordID, &l.Kind, &l.LoanID, &l.BenefitTypeID, &l.Name, &l.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payroll deduction: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func recordWhere(filter payroll.RecordFilter, args []interface{}) (string, []interface{}) {
	where := ""
	argIdx := len(args) + 1

	if !filter.IncludeArchived {
		where += " AND pr.is_archived = FALSE"
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+s+"%")
	}
	return where, args
}

func (r *payrollRepository) ListRecordsByPeriod(ctx context.Context, periodID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	where, args := recordWhere(filter, []interface{}{periodID})
	argIdx := len(args) + 1

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := recordSelect + ` WHERE pr.payroll_period_id = $1` + where +
		fmt.Sprintf(" ORDER BY e.full_name, pr.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	return r.queryRecords(ctx, q, query, args...)
}

func (r *payrollRepository) CountRecordsByPeriod(ctx context.Context, periodID string, filter payroll.RecordFilter) (int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := recordWhere(filter, []interface{}{periodID})
	query := `
		SELECT COUNT(*)
		FROM payroll_records pr
		LEFT JOIN employees e ON pr.employee_id = e.id
		WHERE pr.payroll_period_id = $1` + where

	var total int64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count payroll records: %w", err)
	}
	return total, nil
}

func (r *payrollRepository) ListRecordsByEmployee(ctx context.Context, employeeID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := recordWhere(payroll.RecordFilter{IncludeArchived: filter.IncludeArchived}, []interface{}{employeeID})

	var total int64
	countQuery := `SELECT COUNT(*) FROM payroll_records pr WHERE pr.employee_id = $1` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	argIdx := len(args) + 1
	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := recordSelect + ` WHERE pr.employee_id = $1` + where +
		fmt.Sprintf(" ORDER BY pp.pay_date DESC, pr.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	records, err := r.queryRecords(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *payrollRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payroll.PayrollRecord, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *payrollRepository) GetPeriodSummary(ctx context.Context, periodID string) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(gross_base), 0),
			COALESCE(SUM(overtime_pay), 0),
			COALESCE(SUM(total_allowances), 0),
			COALESCE(SUM(night_diff_pay), 0),
			COALESCE(SUM(gross_pay), 0),
			COALESCE(SUM(total_benefit_deductions), 0),
			COALESCE(SUM(total_loan_deductions), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(net_pay), 0)
		FROM payroll_records
		WHERE payroll_period_id = $1 AND is_archived = (SELECT is_archived FROM payroll_periods WHERE id = $1)
	`

	var s payroll.PeriodSummary
	err := q.QueryRow(ctx, query, periodID).Scan(
		&s.Headcount, &s.TotalGrossBase, &s.TotalOvertimePay, &s.TotalAllowances, &s.TotalNightDiffPay,
		&s.TotalGrossPay, &s.TotalBenefitDeductions, &s.TotalLoanDeductions, &s.TotalDeductions, &s.TotalNetPay,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to get payroll period summary: %w", err)
	}
	return s, nil
}

// ========== 13TH MONTH ==========

// SumGrossBase totals gross_base of the employee's live records whose period
// cutoff ends inside [start, end].
func (r *payrollRepository) SumGrossBase(ctx context.Context, employeeID string, start, end time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(pr.gross_base), 0)
		FROM payroll_records pr
		JOIN payroll_periods pp ON pr.payroll_period_id = pp.id
		WHERE pr.employee_id = $1
			AND pr.is_archived = FALSE
			AND pp.cutoff_end BETWEEN $2 AND $3
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum gross base: %w", err)
	}
	return total, nil
}

func (r *payrollRepository) UpsertThirteenthMonth(ctx context.Context, tm payroll.ThirteenthMonth) (payroll.ThirteenthMonth, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO thirteenth_month (id, employee_id, start_date, end_date, total_basic, amount, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (employee_id, start_date, end_date) DO UPDATE SET
			total_basic = EXCLUDED.total_basic,
			amount = EXCLUDED.amount,
			generated_at = EXCLUDED.generated_at
		RETURNING id, generated_at
	`

	err := q.QueryRow(ctx, query, tm.ID, tm.EmployeeID, tm.StartDate, tm.EndDate, tm.TotalBasic, tm.Amount).
		Scan(&tm.ID, &tm.GeneratedAt)
	if err != nil {
		return payroll.ThirteenthMonth{}, fmt.Errorf("failed to upsert 13th month pay: %w", err)
	}
	return tm, nil
}

func (r *payrollRepository) ListThirteenthMonth(ctx context.Context, filter payroll.ThirteenthMonthFilter) ([]payroll.ThirteenthMonth, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := ` WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND tm.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM thirteenth_month tm`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count 13th month pay: %w", err)
	}

	_, limit, offset := normalizePage(filter.Page, filter.Limit)
	query := `
		SELECT tm.id, tm.employee_id, tm.start_date, tm.end_date, tm.total_basic, tm.amount, tm.generated_at,
			e.full_name, e.employee_code
		FROM thirteenth_month tm
		LEFT JOIN employees e ON tm.employee_id = e.id` + where +
		fmt.Sprintf(" ORDER BY tm.generated_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list 13th month pay: %w", err)
	}
	defer rows.Close()

	var items []payroll.ThirteenthMonth
	for rows.Next() {
		var tm payroll.ThirteenthMonth
		if err := rows.Scan(
			&tm.ID, &tm.EmployeeID, &tm.StartDate, &tm.EndDate, &tm.TotalBasic, &tm.Amount, &tm.GeneratedAt,
			&tm.EmployeeName, &tm.EmployeeCode,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan 13th month pay: %w", err)
		}
		items = append(items, tm)
	}
	return items, total, rows.Err()
}

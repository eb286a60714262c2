package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type EmployeeInput struct {
	EmployeeID    string          `json:"employee_id"`
	DaysWorked    decimal.Decimal `json:"days_worked"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Absences      decimal.Decimal `json:"absences"`
}

type CreatePayrollPeriodRequest struct {
	PeriodName     string          `json:"period_name"`
	PayDate        string          `json:"pay_date"`
	CutoffStart    string          `json:"cutoff_start"`
	CutoffEnd      string          `json:"cutoff_end"`
	PeriodType     string          `json:"period_type,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	Employees      []EmployeeInput `json:"employees"`
}

func (r *CreatePayrollPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PeriodName) {
		errs = append(errs, validator.ValidationError{Field: "period_name", Message: "is required"})
	} else if len(r.PeriodName) > 100 {
		errs = append(errs, validator.ValidationError{Field: "period_name", Message: "must be at most 100 characters"})
	}

	if validator.IsEmpty(r.PayDate) {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.PayDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be in YYYY-MM-DD format"})
	}

	start, startOK := validator.IsValidDate(r.CutoffStart)
	if validator.IsEmpty(r.CutoffStart) {
		errs = append(errs, validator.ValidationError{Field: "cutoff_start", Message: "is required"})
	} else if !startOK {
		errs = append(errs, validator.ValidationError{Field: "cutoff_start", Message: "must be in YYYY-MM-DD format"})
	}

	end, endOK := validator.IsValidDate(r.CutoffEnd)
	if validator.IsEmpty(r.CutoffEnd) {
		errs = append(errs, validator.ValidationError{Field: "cutoff_end", Message: "is required"})
	} else if !endOK {
		errs = append(errs, validator.ValidationError{Field: "cutoff_end", Message: "must be in YYYY-MM-DD format"})
	}

	cutoffDays := 0
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "cutoff_end", Message: "must be on or after cutoff_start"})
		} else {
			cutoffDays = validator.DaysInclusive(start, end)
		}
	}

	if r.PeriodType != "" && !PeriodType(r.PeriodType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "must be one of monthly, semi_monthly, weekly"})
	}

	if r.IdempotencyKey != nil && (validator.IsEmpty(*r.IdempotencyKey) || len(*r.IdempotencyKey) > 255) {
		errs = append(errs, validator.ValidationError{Field: "idempotency_key", Message: "must be between 1 and 255 characters"})
	}

	if len(r.Employees) == 0 {
		errs = append(errs, validator.ValidationError{Field: "employees", Message: "at least one employee is required"})
	}

	seen := make(map[string]int, len(r.Employees))
	for i, e := range r.Employees {
		field := func(name string) string { return fmt.Sprintf("employees[%d].%s", i, name) }

		if validator.IsEmpty(e.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: field("employee_id"), Message: "is required"})
		} else if !validator.IsValidUUID(e.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: field("employee_id"), Message: "must be a valid UUID"})
		} else if first, dup := seen[e.EmployeeID]; dup {
			errs = append(errs, validator.ValidationError{Field: field("employee_id"), Message: fmt.Sprintf("duplicates employees[%d]", first)})
		} else {
			seen[e.EmployeeID] = i
		}

		if msg, ok := checkQuantity(e.DaysWorked); !ok {
			errs = append(errs, validator.ValidationError{Field: field("days_worked"), Message: msg})
		} else if cutoffDays > 0 && e.DaysWorked.GreaterThan(decimal.NewFromInt(int64(cutoffDays))) {
			errs = append(errs, validator.ValidationError{Field: field("days_worked"), Message: fmt.Sprintf("cannot exceed the %d days in the cutoff", cutoffDays)})
		}
		if msg, ok := checkQuantity(e.OvertimeHours); !ok {
			errs = append(errs, validator.ValidationError{Field: field("overtime_hours"), Message: msg})
		}
		if msg, ok := checkQuantity(e.Absences); !ok {
			errs = append(errs, validator.ValidationError{Field: field("absences"), Message: msg})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkQuantity bounds per-employee inputs to their NUMERIC(6,2) columns.
func checkQuantity(d decimal.Decimal) (string, bool) {
	switch {
	case !validator.IsNonNegative(d):
		return "must be non-negative", false
	case !d.Equal(d.Truncate(2)):
		return "must have at most 2 decimal places", false
	case !validator.FitsNumeric(d, 6, 2):
		return "must be at most 9999.99", false
	}
	return "", true
}

type CreatePayrollPeriodResponse struct {
	Period         PayrollPeriodResponse `json:"period"`
	RecordsCreated int                   `json:"records_created"`
	Replayed       bool                  `json:"replayed"`
}

type UpdatePayrollPeriodRequest struct {
	ID         string  `json:"-"`
	PeriodName *string `json:"period_name,omitempty"`
	PayDate    *string `json:"pay_date,omitempty"`
}

func (r *UpdatePayrollPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodName == nil && r.PayDate == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "period_name or pay_date is required"})
	}
	if r.PeriodName != nil && validator.IsEmpty(*r.PeriodName) {
		errs = append(errs, validator.ValidationError{Field: "period_name", Message: "cannot be empty"})
	}
	if r.PayDate != nil {
		if _, ok := validator.IsValidDate(*r.PayDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ArchivePayrollPeriodRequest struct {
	ID         string `json:"-"`
	IsArchived bool   `json:"is_archived"`
}

type PeriodFilter struct {
	Archived   *bool   `json:"archived,omitempty"`
	EmployeeID *string `json:"-"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type PayrollPeriodResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PayDate     string `json:"pay_date"`
	CutoffStart string `json:"cutoff_start"`
	CutoffEnd   string `json:"cutoff_end"`
	PeriodType  string `json:"period_type"`
	Status      string `json:"status"`
	IsArchived  bool   `json:"is_archived"`
	RecordCount int    `json:"record_count"`
	CreatedAt   string `json:"created_at"`
}

type ListPayrollPeriodResponse struct {
	Data       []PayrollPeriodResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

// ========== RECORD DTOs ==========

type RecordFilter struct {
	Search          string `json:"search,omitempty"`
	IncludeArchived bool   `json:"include_archived"`
	Page            int    `json:"page"`
	Limit           int    `json:"limit"`
}

type PayrollRecordResponse struct {
	ID                     string          `json:"id"`
	PayrollPeriodID        string          `json:"payroll_period_id"`
	PeriodName             *string         `json:"period_name,omitempty"`
	PayDate                *string         `json:"pay_date,omitempty"`
	EmployeeID             string          `json:"employee_id"`
	EmployeeName           *string         `json:"employee_name,omitempty"`
	EmployeeCode           *string         `json:"employee_code,omitempty"`
	DepartmentName         *string         `json:"department_name,omitempty"`
	PositionName           *string         `json:"position_name,omitempty"`
	DailyRate              decimal.Decimal `json:"daily_rate"`
	HourlyRate             decimal.Decimal `json:"hourly_rate"`
	DaysWorked             decimal.Decimal `json:"days_worked"`
	OvertimeHours          decimal.Decimal `json:"overtime_hours"`
	Absences               decimal.Decimal `json:"absences"`
	OvertimePay            decimal.Decimal `json:"overtime_pay"`
	NightDiffPay           decimal.Decimal `json:"night_diff_pay"`
	GrossBase              decimal.Decimal `json:"gross_base"`
	TotalAllowances        decimal.Decimal `json:"total_allowances"`
	GrossPay               decimal.Decimal `json:"gross_pay"`
	TotalBenefitDeductions decimal.Decimal `json:"total_benefit_deductions"`
	TotalLoanDeductions    decimal.Decimal `json:"total_loan_deductions"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	NetPay                 decimal.Decimal `json:"net_pay"`
	IsArchived             bool            `json:"is_archived"`
	CreatedAt              string          `json:"created_at"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollDetailsResponse struct {
	Period     PayrollPeriodResponse   `json:"period"`
	Records    []PayrollRecordResponse `json:"records"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PeriodSummaryResponse struct {
	PeriodID               string          `json:"period_id"`
	PeriodName             string          `json:"period_name"`
	Headcount              int             `json:"headcount"`
	TotalGrossBase         decimal.Decimal `json:"total_gross_base"`
	TotalOvertimePay       decimal.Decimal `json:"total_overtime_pay"`
	TotalAllowances        decimal.Decimal `json:"total_allowances"`
	TotalNightDiffPay      decimal.Decimal `json:"total_night_diff_pay"`
	TotalGrossPay          decimal.Decimal `json:"total_gross_pay"`
	TotalBenefitDeductions decimal.Decimal `json:"total_benefit_deductions"`
	TotalLoanDeductions    decimal.Decimal `json:"total_loan_deductions"`
	TotalDeductions        decimal.Decimal `json:"total_deductions"`
	TotalNetPay            decimal.Decimal `json:"total_net_pay"`
}

// ========== PAYSLIP DTOs ==========

type PayslipEmployee struct {
	ID         string  `json:"id"`
	Code       *string `json:"code,omitempty"`
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

type PayslipPeriod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PayDate     string `json:"pay_date"`
	CutoffStart string `json:"cutoff_start"`
	CutoffEnd   string `json:"cutoff_end"`
	PeriodType  string `json:"period_type"`
}

type PayslipLine struct {
	Kind   string `json:"kind,omitempty"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// PayslipResponse carries every amount pre-formatted for display.
type PayslipResponse struct {
	RecordID               string          `json:"record_id"`
	Currency               string          `json:"currency,omitempty"`
	Employee               PayslipEmployee `json:"employee"`
	Period                 PayslipPeriod   `json:"period"`
	DailyRate              string          `json:"daily_rate"`
	HourlyRate             string          `json:"hourly_rate"`
	DaysWorked             string          `json:"days_worked"`
	OvertimeHours          string          `json:"overtime_hours"`
	Absences               string          `json:"absences"`
	BasicPay               string          `json:"basic_pay"`
	OvertimePay            string          `json:"overtime_pay"`
	GrossBase              string          `json:"gross_base"`
	NightDiffPay           string          `json:"night_diff_pay"`
	Allowances             []PayslipLine   `json:"allowances"`
	TotalAllowances        string          `json:"total_allowances"`
	GrossPay               string          `json:"gross_pay"`
	Deductions             []PayslipLine   `json:"deductions"`
	TotalBenefitDeductions string          `json:"total_benefit_deductions"`
	TotalLoanDeductions    string          `json:"total_loan_deductions"`
	TotalDeductions        string          `json:"total_deductions"`
	NetPay                 string          `json:"net_pay"`
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// ========== 13TH MONTH DTOs ==========

type GenerateThirteenthMonthRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

func (r *GenerateThirteenthMonthRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "at least one employee is required"})
	}
	for i, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("employee_ids[%d]", i), Message: "must be a valid UUID"})
		}
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "is required in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "is required in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be on or after start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ThirteenthMonthFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type ThirteenthMonthResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	EmployeeCode *string         `json:"employee_code,omitempty"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalBasic   decimal.Decimal `json:"total_basic"`
	Amount       decimal.Decimal `json:"amount"`
	GeneratedAt  string          `json:"generated_at"`
}

type ListThirteenthMonthResponse struct {
	Data       []ThirteenthMonthResponse `json:"data"`
	TotalCount int64                     `json:"total_count"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
}

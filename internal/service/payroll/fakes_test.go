package payroll

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memStore backs the employee, loan and payroll fakes with shared state so a
// fake transaction can snapshot and restore all of it at once.
type memStore struct {
	mu sync.Mutex

	employees      map[string]employee.Employee
	allowanceGrant map[string][]employee.AllowanceGrant
	benefitGrant   map[string][]employee.BenefitGrant
	loanTypes      map[string]loan.LoanType
	loans          map[string]loan.Loan
	periods        map[string]payroll.PayrollPeriod
	records        map[string]payroll.PayrollRecord
	allowanceLines []payroll.PayrollAllowance
	deductionLines []payroll.Deduction
	thirteenth     map[string]payroll.ThirteenthMonth

	// failCreateRecord makes CreateRecord fail for the given employee.
	failCreateRecord map[string]error

	// trace records lock and overlap calls in order; it survives rollbacks.
	trace []string
}

func newMemStore() *memStore {
	return &memStore{
		employees:        map[string]employee.Employee{},
		allowanceGrant:   map[string][]employee.AllowanceGrant{},
		benefitGrant:     map[string][]employee.BenefitGrant{},
		loanTypes:        map[string]loan.LoanType{},
		loans:            map[string]loan.Loan{},
		periods:          map[string]payroll.PayrollPeriod{},
		records:          map[string]payroll.PayrollRecord{},
		thirteenth:       map[string]payroll.ThirteenthMonth{},
		failCreateRecord: map[string]error{},
	}
}

type snapshot struct {
	loanTypes      map[string]loan.LoanType
	loans          map[string]loan.Loan
	periods        map[string]payroll.PayrollPeriod
	records        map[string]payroll.PayrollRecord
	allowanceLines []payroll.PayrollAllowance
	deductionLines []payroll.Deduction
	thirteenth     map[string]payroll.ThirteenthMonth
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		loanTypes:      cloneMap(s.loanTypes),
		loans:          cloneMap(s.loans),
		periods:        cloneMap(s.periods),
		records:        cloneMap(s.records),
		allowanceLines: append([]payroll.PayrollAllowance(nil), s.allowanceLines...),
		deductionLines: append([]payroll.Deduction(nil), s.deductionLines...),
		thirteenth:     cloneMap(s.thirteenth),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loanTypes = snap.loanTypes
	s.loans = snap.loans
	s.periods = snap.periods
	s.records = snap.records
	s.allowanceLines = snap.allowanceLines
	s.deductionLines = snap.deductionLines
	s.thirteenth = snap.thirteenth
}

type fakeTransactor struct {
	store *memStore
	calls int
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ========== EMPLOYEE ==========

type fakeEmployeeRepo struct{ s *memStore }

func (r fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	emp, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r fakeEmployeeRepo) GetAllowanceGrants(_ context.Context, employeeID string) ([]employee.AllowanceGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.allowanceGrant[employeeID], nil
}

func (r fakeEmployeeRepo) GetBenefitGrants(_ context.Context, employeeID string) ([]employee.BenefitGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.benefitGrant[employeeID], nil
}

// ========== LOAN ==========

type fakeLoanRepo struct{ s *memStore }

func (r fakeLoanRepo) CreateLoanType(_ context.Context, lt loan.LoanType) (loan.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.loanTypes {
		if strings.EqualFold(existing.Name, lt.Name) {
			return loan.LoanType{}, loan.ErrLoanTypeNameExists
		}
	}
	lt.CreatedAt = time.Now()
	lt.UpdatedAt = lt.CreatedAt
	r.s.loanTypes[lt.ID] = lt
	return lt, nil
}

func (r fakeLoanRepo) GetLoanTypeByID(_ context.Context, id string) (loan.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lt, ok := r.s.loanTypes[id]
	if !ok {
		return loan.LoanType{}, loan.ErrLoanTypeNotFound
	}
	return lt, nil
}

func (r fakeLoanRepo) ListLoanTypes(_ context.Context, activeOnly bool) ([]loan.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.LoanType
	for _, lt := range r.s.loanTypes {
		if activeOnly && !lt.IsActive {
			continue
		}
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeLoanRepo) Create(_ context.Context, l loan.Loan) (loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.s.loans[l.ID] = l
	return l, nil
}

func (r fakeLoanRepo) GetByID(_ context.Context, id string) (loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return loan.Loan{}, loan.ErrLoanNotFound
	}
	return l, nil
}

func (r fakeLoanRepo) GetByIDForUpdate(ctx context.Context, id string) (loan.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r fakeLoanRepo) List(_ context.Context, filter loan.LoanFilter) ([]loan.Loan, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.s.loans {
		if filter.EmployeeID != nil && l.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(l.Status) != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (r fakeLoanRepo) UpdateStatus(_ context.Context, id string, status loan.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return loan.ErrLoanNotFound
	}
	l.Status = status
	r.s.loans[id] = l
	return nil
}

func (r fakeLoanRepo) GetActiveByEmployeeForUpdate(_ context.Context, employeeID string) ([]loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.EmployeeID == employeeID && l.Status == loan.StatusActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeLoanRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal, status loan.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return loan.ErrLoanNotFound
	}
	l.BalanceAmount = balance
	l.Status = status
	r.s.loans[id] = l
	return nil
}

// ========== PAYROLL ==========

type fakePayrollRepo struct{ s *memStore }

func (r fakePayrollRepo) withCount(p payroll.PayrollPeriod) payroll.PayrollPeriod {
	p.RecordCount = 0
	for _, rec := range r.s.records {
		if rec.PayrollPeriodID == p.ID {
			p.RecordCount++
		}
	}
	return p
}

func (r fakePayrollRepo) CreatePeriod(_ context.Context, p payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.IdempotencyKey != nil {
		for _, existing := range r.s.periods {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *p.IdempotencyKey {
				return payroll.PayrollPeriod{}, payroll.ErrIdempotencyKeyConflict
			}
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.periods[p.ID] = p
	return p, nil
}

func (r fakePayrollRepo) GetPeriodByID(_ context.Context, id string) (payroll.PayrollPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return r.withCount(p), nil
}

func (r fakePayrollRepo) GetPeriodByIdempotencyKey(_ context.Context, key string) (payroll.PayrollPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			return r.withCount(p), nil
		}
	}
	return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
}

func (r fakePayrollRepo) UpdatePeriod(_ context.Context, req payroll.UpdatePayrollPeriodRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[req.ID]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if req.PeriodName != nil {
		p.Name = strings.TrimSpace(*req.PeriodName)
	}
	if req.PayDate != nil {
		p.PayDate = mustDate(*req.PayDate)
	}
	r.s.periods[req.ID] = p
	return nil
}

func (r fakePayrollRepo) UpdatePeriodStatus(_ context.Context, id string, status payroll.PeriodStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	p.Status = status
	r.s.periods[id] = p
	return nil
}

func (r fakePayrollRepo) SetPeriodArchived(_ context.Context, id string, archived bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	p.IsArchived = archived
	r.s.periods[id] = p
	return nil
}

func (r fakePayrollRepo) ListPeriods(_ context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.PayrollPeriod
	for _, p := range r.s.periods {
		if filter.Archived != nil && p.IsArchived != *filter.Archived {
			continue
		}
		if filter.EmployeeID != nil {
			found := false
			for _, rec := range r.s.records {
				if rec.PayrollPeriodID == p.ID && rec.EmployeeID == *filter.EmployeeID && !rec.IsArchived {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, r.withCount(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PayDate.After(out[j].PayDate) })
	return out, int64(len(out)), nil
}

func (r fakePayrollRepo) overlaps(employeeID, skipPeriodID string, start, end time.Time) bool {
	for _, rec := range r.s.records {
		if rec.EmployeeID != employeeID || rec.IsArchived || rec.PayrollPeriodID == skipPeriodID {
			continue
		}
		p := r.s.periods[rec.PayrollPeriodID]
		if !p.CutoffStart.After(end) && !p.CutoffEnd.Before(start) {
			return true
		}
	}
	return false
}

func (r fakePayrollRepo) LockEmployee(_ context.Context, employeeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.trace = append(r.s.trace, "lock:"+employeeID)
	return nil
}

func (r fakePayrollRepo) HasOverlappingRecord(_ context.Context, employeeID string, start, end time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.trace = append(r.s.trace, "overlap:"+employeeID)
	return r.overlaps(employeeID, "", start, end), nil
}

func (r fakePayrollRepo) HasOverlapWithLiveRecords(_ context.Context, periodID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.periods[periodID]
	for _, rec := range r.s.records {
		if rec.PayrollPeriodID == periodID && r.overlaps(rec.EmployeeID, periodID, p.CutoffStart, p.CutoffEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakePayrollRepo) CreateRecord(_ context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.failCreateRecord[rec.EmployeeID]; ok {
		return payroll.PayrollRecord{}, err
	}
	for _, existing := range r.s.records {
		if existing.EmployeeID == rec.EmployeeID && existing.PayrollPeriodID == rec.PayrollPeriodID {
			return payroll.PayrollRecord{}, payroll.ErrRecordAlreadyExists
		}
	}
	rec.CreatedAt = time.Now()
	r.s.records[rec.ID] = rec
	return rec, nil
}

func (r fakePayrollRepo) CreateAllowances(_ context.Context, lines []payroll.PayrollAllowance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.allowanceLines = append(r.s.allowanceLines, lines...)
	return nil
}

func (r fakePayrollRepo) CreateDeductions(_ context.Context, lines []payroll.Deduction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deductionLines = append(r.s.deductionLines, lines...)
	return nil
}

func (r fakePayrollRepo) SetRecordsArchivedByPeriod(_ context.Context, periodID string, archived bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rec := range r.s.records {
		if rec.PayrollPeriodID == periodID {
			rec.IsArchived = archived
			r.s.records[id] = rec
		}
	}
	return nil
}

func (r fakePayrollRepo) joined(rec payroll.PayrollRecord) payroll.PayrollRecord {
	if emp, ok := r.s.employees[rec.EmployeeID]; ok {
		name, code := emp.FullName, emp.EmployeeCode
		rec.EmployeeName = &name
		rec.EmployeeCode = &code
		rec.DepartmentName = emp.DepartmentName
		rec.PositionName = emp.PositionName
	}
	if p, ok := r.s.periods[rec.PayrollPeriodID]; ok {
		name, payDate := p.Name, p.PayDate
		rec.PeriodName = &name
		rec.PayDate = &payDate
	}
	return rec
}

func (r fakePayrollRepo) GetRecordByID(_ context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
	}
	return r.joined(rec), nil
}

func (r fakePayrollRepo) GetAllowancesByRecordID(_ context.Context, recordID string) ([]payroll.PayrollAllowance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.PayrollAllowance
	for _, l := range r.s.allowanceLines {
		if l.PayrollRecordID == recordID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r fakePayrollRepo) GetDeductionsByRecordID(_ context.Context, recordID string) ([]payroll.Deduction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.Deduction
	for _, l := range r.s.deductionLines {
		if l.PayrollRecordID == recordID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r fakePayrollRepo) filterRecords(match func(payroll.PayrollRecord) bool, filter payroll.RecordFilter) []payroll.PayrollRecord {
	var out []payroll.PayrollRecord
	for _, rec := range r.s.records {
		if !match(rec) || (!filter.IncludeArchived && rec.IsArchived) {
			continue
		}
		rec = r.joined(rec)
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(*rec.EmployeeName), q) && !strings.Contains(strings.ToLower(*rec.EmployeeCode), q) {
				continue
			}
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakePayrollRepo) ListRecordsByPeriod(_ context.Context, periodID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filterRecords(func(rec payroll.PayrollRecord) bool { return rec.PayrollPeriodID == periodID }, filter), nil
}

func (r fakePayrollRepo) CountRecordsByPeriod(_ context.Context, periodID string, filter payroll.RecordFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filterRecords(func(rec payroll.PayrollRecord) bool { return rec.PayrollPeriodID == periodID }, filter))), nil
}

func (r fakePayrollRepo) ListRecordsByEmployee(_ context.Context, employeeID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filterRecords(func(rec payroll.PayrollRecord) bool { return rec.EmployeeID == employeeID }, payroll.RecordFilter{IncludeArchived: filter.IncludeArchived})
	return out, int64(len(out)), nil
}

func (r fakePayrollRepo) GetPeriodSummary(_ context.Context, periodID string) (payroll.PeriodSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := payroll.PeriodSummary{}
	for _, rec := range r.s.records {
		if rec.PayrollPeriodID != periodID {
			continue
		}
		sum.Headcount++
		sum.TotalGrossBase = sum.TotalGrossBase.Add(rec.GrossBase)
		sum.TotalOvertimePay = sum.TotalOvertimePay.Add(rec.OvertimePay)
		sum.TotalAllowances = sum.TotalAllowances.Add(rec.TotalAllowances)
		sum.TotalNightDiffPay = sum.TotalNightDiffPay.Add(rec.NightDiffPay)
		sum.TotalGrossPay = sum.TotalGrossPay.Add(rec.GrossPay)
		sum.TotalBenefitDeductions = sum.TotalBenefitDeductions.Add(rec.TotalBenefitDeductions)
		sum.TotalLoanDeductions = sum.TotalLoanDeductions.Add(rec.TotalLoanDeductions)
		sum.TotalDeductions = sum.TotalDeductions.Add(rec.TotalDeductions)
		sum.TotalNetPay = sum.TotalNetPay.Add(rec.NetPay)
	}
	return sum, nil
}

func (r fakePayrollRepo) SumGrossBase(_ context.Context, employeeID string, start, end time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, rec := range r.s.records {
		if rec.EmployeeID != employeeID || rec.IsArchived {
			continue
		}
		p := r.s.periods[rec.PayrollPeriodID]
		if p.CutoffEnd.Before(start) || p.CutoffEnd.After(end) {
			continue
		}
		total = total.Add(rec.GrossBase)
	}
	return total, nil
}

func thirteenthKey(employeeID string, start, end time.Time) string {
	return employeeID + "|" + start.Format("2006-01-02") + "|" + end.Format("2006-01-02")
}

func (r fakePayrollRepo) UpsertThirteenthMonth(_ context.Context, tm payroll.ThirteenthMonth) (payroll.ThirteenthMonth, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := thirteenthKey(tm.EmployeeID, tm.StartDate, tm.EndDate)
	if existing, ok := r.s.thirteenth[key]; ok {
		tm.ID = existing.ID
	}
	tm.GeneratedAt = time.Now()
	r.s.thirteenth[key] = tm
	return tm, nil
}

func (r fakePayrollRepo) ListThirteenthMonth(_ context.Context, filter payroll.ThirteenthMonthFilter) ([]payroll.ThirteenthMonth, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.ThirteenthMonth
	for _, tm := range r.s.thirteenth {
		if filter.EmployeeID != nil && tm.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, tm)
	}
	return out, int64(len(out)), nil
}

// ========== HELPERS ==========

var errInjected = errors.New("injected failure")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func identityContext(t *testing.T, userID string, employeeID *string, role user.Role) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	claims := map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
	}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

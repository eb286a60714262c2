package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPeriodNotFound          = errors.New("payroll period not found")
	ErrPeriodArchived          = errors.New("payroll period is archived")
	ErrRecordNotFound          = errors.New("payroll record not found")
	ErrRecordAlreadyExists     = errors.New("payroll record already exists for this employee and period")
	ErrOverlappingRecord       = errors.New("employee already has a payroll record in an overlapping cutoff")
	ErrIdempotencyKeyConflict  = errors.New("a payroll run with this idempotency key is already in progress")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrThirteenthMonthNotFound = errors.New("13th month pay not found")
)

// EmployeeRunError reports which entry of a payroll run batch failed.
// The whole run is rolled back when one is returned.
type EmployeeRunError struct {
	EmployeeID string
	Index      int
	Err        error
}

func (e *EmployeeRunError) Error() string {
	return fmt.Sprintf("payroll run failed at employee %s (index %d): %v", e.EmployeeID, e.Index, e.Err)
}

func (e *EmployeeRunError) Unwrap() error {
	return e.Err
}

package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A failed payroll run names the employee that broke it
	var runErr *payroll.EmployeeRunError
	if errors.As(err, &runErr) {
		handleRunError(w, runErr)
		return
	}

	switch {
	// Identity
	case errors.Is(err, user.ErrMissingIdentity), errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrEmployeeIdentityRequired):
		Forbidden(w, "No employee is linked to this account")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrThirteenthMonthNotFound):
		NotFound(w, "13th month pay not found")
	case errors.Is(err, payroll.ErrPeriodArchived):
		Conflict(w, "Payroll period is archived")
	case errors.Is(err, payroll.ErrRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this employee and period")
	case errors.Is(err, payroll.ErrOverlappingRecord):
		Conflict(w, "Employee already has a payroll record in an overlapping cutoff")
	case errors.Is(err, payroll.ErrIdempotencyKeyConflict):
		Conflict(w, "A payroll run with this idempotency key is already in progress")

	// Loan domain errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, loan.ErrLoanTypeNotFound):
		NotFound(w, "Loan type not found")
	case errors.Is(err, loan.ErrLoanTypeNameExists):
		Conflict(w, "Loan type name already exists")
	case errors.Is(err, loan.ErrInvalidStatusTransition):
		Conflict(w, err.Error())
	case errors.Is(err, loan.ErrLoanTypeInactive),
		errors.Is(err, loan.ErrPrincipalExceedsLimit),
		errors.Is(err, loan.ErrTermExceedsMaximum):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func handleRunError(w http.ResponseWriter, runErr *payroll.EmployeeRunError) {
	msg := fmt.Sprintf("Payroll run rolled back at employee %s (index %d)", runErr.EmployeeID, runErr.Index)

	switch {
	case errors.Is(runErr, payroll.ErrEmployeeNotFound), errors.Is(runErr, employee.ErrEmployeeNotFound):
		NotFound(w, msg+": employee not found")
	case errors.Is(runErr, payroll.ErrOverlappingRecord):
		Conflict(w, msg+": overlapping cutoff")
	case errors.Is(runErr, payroll.ErrRecordAlreadyExists):
		Conflict(w, msg+": record already exists")
	default:
		slog.Error("payroll run failed", "employee_id", runErr.EmployeeID, "index", runErr.Index, "error", runErr.Err)
		InternalServerError(w, msg)
	}
}

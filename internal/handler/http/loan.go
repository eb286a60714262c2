package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/loan"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LoanHandler interface {
	// Loan types
	CreateLoanType(w http.ResponseWriter, r *http.Request)
	ListLoanTypes(w http.ResponseWriter, r *http.Request)
	GetLoanType(w http.ResponseWriter, r *http.Request)

	// Loans
	CreateLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	GetLoanSchedule(w http.ResponseWriter, r *http.Request)
	ApproveLoan(w http.ResponseWriter, r *http.Request)
	CancelLoan(w http.ResponseWriter, r *http.Request)
	MarkLoanDefaulted(w http.ResponseWriter, r *http.Request)
	ListMyLoans(w http.ResponseWriter, r *http.Request)
}

type loanHandlerImpl struct {
	loanService loan.LoanService
}

func NewLoanHandler(loanService loan.LoanService) LoanHandler {
	return &loanHandlerImpl{loanService: loanService}
}

// ========== LOAN TYPES ==========

func (h *loanHandlerImpl) CreateLoanType(w http.ResponseWriter, r *http.Request) {
	var req loan.CreateLoanTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.CreateLoanType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan type created", result)
}

func (h *loanHandlerImpl) ListLoanTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	result, err := h.loanService.ListLoanTypes(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) GetLoanType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan type ID is required", nil)
		return
	}

	result, err := h.loanService.GetLoanType(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LOANS ==========

func (h *loanHandlerImpl) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loan.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.loanService.CreateLoan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan created", result)
}

func (h *loanHandlerImpl) ListLoans(w http.ResponseWriter, r *http.Request) {
	filter := loanFilterFromQuery(r)
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	result, err := h.loanService.ListLoans(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *loanHandlerImpl) ListMyLoans(w http.ResponseWriter, r *http.Request) {
	result, err := h.loanService.ListMyLoans(r.Context(), loanFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *loanHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.GetLoan(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) GetLoanSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := h.loanService.GetLoanSchedule(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *loanHandlerImpl) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.loanService.ApproveLoan, "Loan approved")
}

func (h *loanHandlerImpl) CancelLoan(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.loanService.CancelLoan, "Loan cancelled")
}

func (h *loanHandlerImpl) MarkLoanDefaulted(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.loanService.MarkLoanDefaulted, "Loan marked as defaulted")
}

type loanTransition func(ctx context.Context, id string) (loan.LoanResponse, error)

func (h *loanHandlerImpl) changeStatus(w http.ResponseWriter, r *http.Request, fn loanTransition, message string) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Loan ID is required", nil)
		return
	}

	result, err := fn(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

func loanFilterFromQuery(r *http.Request) loan.LoanFilter {
	filter := loan.LoanFilter{}
	filter.Page, filter.Limit = parsePagination(r)
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	return filter
}
